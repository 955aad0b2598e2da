package services

import (
	"time"

	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/render"

	"github.com/sourcegraph/conc"
)

// View is everything an operator screen shows for one snapshot.
type View struct {
	Phase     controller.Phase
	RouteNo   string
	Token     uint64
	UpdatedAt time.Time
	Map       render.MapView
	List      render.ListView
}

// BuildView renders the map and the list from the same immutable state.
// The two renderers share nothing but the snapshot, so they run in parallel.
func BuildView(s controller.State) View {
	v := View{
		Phase:     s.Phase,
		RouteNo:   s.RouteNo,
		Token:     s.Token,
		UpdatedAt: s.UpdatedAt,
	}

	var wg conc.WaitGroup
	wg.Go(func() { v.Map = render.Map(s.Result) })
	wg.Go(func() { v.List = render.List(s.Result) })
	wg.Wait()

	if s.Phase == controller.PhaseLoading {
		v.Map.Placeholder = "Optimizing route " + s.RouteNo + "..."
		v.List.Placeholder = "Optimizing route " + s.RouteNo + "..."
	}

	return v
}
