package types_test

import (
	"testing"

	"github.com/okian/nbapicks/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGameStatusTerminal(t *testing.T) {
	Convey("Given every game status", t, func() {
		terminal := map[types.GameStatus]bool{
			types.StatusScheduled:  false,
			types.StatusInProgress: false,
			types.StatusUnknown:    false,
			types.StatusFinal:      true,
			types.StatusPostponed:  true,
			types.StatusCancelled:  true,
			types.StatusSuspended:  true,
			types.StatusAbandoned:  true,
		}
		Convey("Then only ended or interrupted games are terminal", func() {
			for s, want := range terminal {
				So(s.Terminal(), ShouldEqual, want)
			}
		})
	})
}

func TestParseOddsMode(t *testing.T) {
	Convey("Given odds mode strings", t, func() {
		So(types.ParseOddsMode("Consensus"), ShouldEqual, types.ModeConsensus)
		So(types.ParseOddsMode("best"), ShouldEqual, types.ModeBest)
		So(types.ParseOddsMode(""), ShouldEqual, types.ModeBest)
	})

	Convey("Given the pick type order", t, func() {
		So(types.PickTypes, ShouldResemble, []types.PickType{types.PickML, types.PickSpread, types.PickTotal})
	})
}
