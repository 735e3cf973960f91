// Package recognize composes the recognition pipeline: liveness gate,
// gallery match, attendance transition.
package recognize

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/mhornak/faceclock/internal/liveness"
	"github.com/mhornak/faceclock/internal/match"
)

// Status is the overall outcome of one recognition attempt. Rejections are
// routine results, not errors.
type Status string

const (
	StatusPunchedIn            Status = "punched_in"
	StatusPunchedOut           Status = "punched_out"
	StatusAlreadyComplete      Status = "already_complete"
	StatusRejectedNotLive      Status = "rejected_not_live"
	StatusRejectedUnrecognized Status = "rejected_unrecognized"
	StatusRejectedBadFrames    Status = "rejected_bad_frames"
)

// Outcome is the result of a recognition attempt, joined across the
// pipeline stages that ran.
type Outcome struct {
	Status        Status         `json:"status"`
	Identity      string         `json:"identity,omitempty"`
	Distance      float64        `json:"distance"`
	Confidence    float64        `json:"confidence"`
	LivenessScore float64        `json:"liveness_score"`
	Record        *ledger.Record `json:"record,omitempty"`
}

// Recognizer runs recognition attempts against one gallery and one ledger.
// Both collaborators are explicit so several independent deployments can
// coexist in a process and tests stay isolated.
type Recognizer struct {
	gallery           *gallery.Gallery
	ledger            *ledger.Ledger
	tolerance         float64
	livenessThreshold float64
}

// New creates a recognizer with the given match tolerance and liveness
// variation threshold.
func New(g *gallery.Gallery, l *ledger.Ledger, tolerance, livenessThreshold float64) *Recognizer {
	if tolerance <= 0 {
		tolerance = match.DefaultTolerance
	}
	if livenessThreshold <= 0 {
		livenessThreshold = liveness.DefaultVariationThreshold
	}
	return &Recognizer{
		gallery:           g,
		ledger:            l,
		tolerance:         tolerance,
		livenessThreshold: livenessThreshold,
	}
}

// Attempt runs one recognition. The liveness gate comes first: it is the
// cheapest check and rejects obvious spoof attempts before any embedding
// comparison, and a not-live frame causes no gallery lookup and no ledger
// mutation. The caller supplies both frames, cropped to the same region.
//
// Frame dimension mismatch returns StatusRejectedBadFrames together with
// the underlying error; that attempt is dead, nothing is retried here.
func (r *Recognizer) Attempt(ctx context.Context, probe []float64, prevFrame, currFrame image.Image, now time.Time) (Outcome, error) {
	verdict, err := liveness.Check(prevFrame, currFrame, r.livenessThreshold)
	if err != nil {
		return Outcome{Status: StatusRejectedBadFrames}, fmt.Errorf("liveness check: %w", err)
	}
	if !verdict.Live {
		return Outcome{
			Status:        StatusRejectedNotLive,
			LivenessScore: verdict.Score,
		}, nil
	}

	res, err := match.Match(probe, r.gallery, r.tolerance)
	if err != nil {
		return Outcome{Status: StatusRejectedBadFrames, LivenessScore: verdict.Score}, fmt.Errorf("matching probe: %w", err)
	}
	if !res.Matched {
		return Outcome{
			Status:        StatusRejectedUnrecognized,
			Distance:      res.Distance,
			LivenessScore: verdict.Score,
		}, nil
	}

	transition, rec, err := r.ledger.RecordEvent(ctx, res.Identity, now)
	if err != nil {
		return Outcome{}, fmt.Errorf("recording attendance for %s: %w", res.Identity, err)
	}

	return Outcome{
		Status:        transitionStatus(transition),
		Identity:      res.Identity,
		Distance:      res.Distance,
		Confidence:    res.Confidence,
		LivenessScore: verdict.Score,
		Record:        rec,
	}, nil
}

func transitionStatus(t ledger.Transition) Status {
	switch t {
	case ledger.TransitionPunchedIn:
		return StatusPunchedIn
	case ledger.TransitionPunchedOut:
		return StatusPunchedOut
	default:
		return StatusAlreadyComplete
	}
}
