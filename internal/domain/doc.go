// Package domain contains the core business entities of the scheduler:
// the static learnable-item catalog entry and the per-learner review record.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
