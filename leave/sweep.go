/*
sweep.go - Expiry sweep of overdue pending requests

PURPOSE:
  A request sitting in the future bucket whose date has passed is stale:
  it is relocated to the past bucket, and if it was still pending it is
  marked ignored (the manager never acted on it). The sweep runs on every
  load of an employee's request set.

INVARIANTS:
  - Idempotent: sweeping an already-swept set is a no-op.
  - One-way: a request never moves from past back to future, and a swept
    status is never resurrected.
  - No ledger effect: pending requests were never debited, so expiring
    them touches no balance.
*/
package leave

import "time"

// SweepExpired relocates future-bucket requests dated strictly before today
// into the past bucket, marking still-pending ones as ignored. It returns
// the swept view and the requests that changed (for persistence). today is
// compared at day granularity.
func SweepExpired(data LeaveData, today time.Time) (LeaveData, []LeaveRequest) {
	day := DayOf(today)

	var (
		future  []LeaveRequest
		changed []LeaveRequest
	)
	past := data.PastLeaves

	for _, r := range data.FutureLeaves {
		if DayOf(r.Date).Before(day) {
			if r.Status == StatusPending {
				r.Status = StatusIgnored
			}
			r.Bucket = BucketPast
			past = append(past, r)
			changed = append(changed, r)
			continue
		}
		future = append(future, r)
	}

	return LeaveData{
		FutureLeaves:  future,
		PastLeaves:    past,
		RemainingTime: data.RemainingTime,
	}, changed
}
