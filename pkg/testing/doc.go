// Package testing provides helpers for testing the clock face without a
// real frame loop.
//
// # Quick Start
//
// Create a tester at a time of day, change the time, and pump frames:
//
//	func TestSecondHand(t *testing.T) {
//	    tester := clocktest.NewFaceTester(t, clockstate.TimeOfDay{Hour: 12, Minute: 36, Second: 10})
//	    tester.SetTime(clockstate.TimeOfDay{Hour: 12, Minute: 36, Second: 11})
//	    tester.Pump(500 * time.Millisecond)
//
//	    if got := tester.Face().Angles().Second; got <= -30 || got >= -24 {
//	        t.Errorf("second hand = %v, want mid sweep", got)
//	    }
//	}
//
// # Snapshot Testing
//
// Capture the painted operations and compare them with a golden file:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/face.snapshot.json")
//
// Update snapshots with:
//
//	CLOCKFACE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import clocktest "github.com/go-drift/clockface/pkg/testing"
package testing
