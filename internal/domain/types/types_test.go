package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/crease/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given a leaderboard entry", t, func() {
		entry := types.Entry{Rank: 2, PlayerID: "p-7", Mode: "bowling", Score: 128.4, FrameID: "f-1"}

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then it uses snake_case keys and omits an empty session", func() {
				So(string(raw), ShouldEqual, `{"rank":2,"player_id":"p-7","mode":"bowling","score":128.4,"frame_id":"f-1"}`)
			})
		})
	})
}

func TestStatsJSON(t *testing.T) {
	Convey("Given pipeline stats", t, func() {
		stats := types.Stats{QueueLen: 1, QueueCap: 8, Workers: 2, Players: map[string]int{"shot": 3}}

		Convey("When round-tripped", func() {
			raw, err := json.Marshal(stats)
			So(err, ShouldBeNil)
			var back types.Stats
			So(json.Unmarshal(raw, &back), ShouldBeNil)

			Convey("Then the per-board counts survive", func() {
				So(back.Players["shot"], ShouldEqual, 3)
				So(back.QueueCap, ShouldEqual, 8)
			})
		})
	})
}
