// Package normalize classifies raw optimizer responses into the canonical
// domain.RouteResult model.
package normalize

import (
	"fmt"
	"strings"

	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/ports"
)

const (
	networkFailureMessage  = "Could not reach the route optimizer. Check your connection and that the backend is running."
	protocolFailureMessage = "The route optimizer returned a response that could not be read."
	businessFailureMessage = "The route optimizer reported an error."
)

// Normalizer maps one request/response pair to exactly one RouteResult.
// The zero value uses MessageMentionsRemoved.
type Normalizer struct {
	Removal RemovalRule
}

var defaultNormalizer = Normalizer{Removal: MessageMentionsRemoved}

// Normalize classifies resp (or transportErr) with the default rules.
func Normalize(resp ports.RawResponse, transportErr error, routeNo string) domain.RouteResult {
	return defaultNormalizer.Normalize(resp, transportErr, routeNo)
}

// ReportsError reports whether raw is a JSON object whose error field would
// be classified as a business failure.
func ReportsError(raw []byte) bool {
	body, ok := parseBody(raw)
	return ok && body.Truthy(errorFields...)
}

// Normalize never fails: every unusable outcome becomes domain.Failed.
// Rules are applied in priority order and the first match wins.
func (n Normalizer) Normalize(resp ports.RawResponse, transportErr error, routeNo string) domain.RouteResult {
	routeNo = strings.TrimSpace(routeNo)

	if transportErr != nil {
		return domain.Failed{
			RouteNo: routeNo,
			Message: networkFailureMessage,
			Cause:   domain.CauseNetwork,
			Err:     transportErr,
		}
	}

	body, ok := parseBody(resp.Body)
	if !ok {
		return domain.Failed{
			RouteNo: routeNo,
			Message: protocolFailureMessage,
			Cause:   domain.CauseProtocol,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("normalize: status %d: body is not a JSON object", resp.StatusCode),
		}
	}

	if routeNo == "" {
		routeNo, _ = body.Text(routeNoFields...)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, ok := body.Text(httpErrorFields...)
		if !ok {
			msg = fmt.Sprintf("HTTP error %d", resp.StatusCode)
		}
		return domain.Failed{
			RouteNo: routeNo,
			Message: msg,
			Cause:   domain.CauseHTTP,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("normalize: optimizer answered HTTP %d", resp.StatusCode),
		}
	}

	if body.Truthy(errorFields...) {
		msg, ok := body.Text(errorFields...)
		if !ok {
			msg = businessFailureMessage
		}
		return domain.Failed{
			RouteNo: routeNo,
			Message: msg,
			Cause:   domain.CauseBusiness,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("normalize: optimizer reported error: %s", msg),
		}
	}

	removal := n.Removal
	if removal == nil {
		removal = MessageMentionsRemoved
	}
	if reason, removed := removal(body); removed {
		return domain.Removed{
			RouteNo:      routeNo,
			Reason:       reason,
			RemovedStops: removedStops(body.List(removedListField)),
		}
	}

	stops := orderedStops(body.List(stopListField))
	if len(stops) == 0 {
		return domain.Empty{RouteNo: routeNo}
	}

	finalStop, _ := body.Text(finalStopFields...)

	return domain.Optimized{
		RouteNo:          routeNo,
		Stops:            stops,
		TotalDistanceKm:  nonNegative(body.Number(totalDistanceFields...)),
		EstimatedTimeMin: nonNegative(body.Number(estimatedTimeFields...)),
		TotalStudents:    body.Count(totalStudentFields...),
		FinalStop:        finalStop,
	}
}

// orderedStops keeps the optimizer's order and drops entries without usable
// coordinates.
func orderedStops(items []Body) []domain.Stop {
	stops := make([]domain.Stop, 0, len(items))
	for i, item := range items {
		lat, okLat := item.Number(latFields...)
		lon, okLon := item.Number(lonFields...)
		if !okLat || !okLon {
			continue
		}

		coords := domain.Coordinates{Lat: lat, Lon: lon}
		if !coords.Valid() {
			continue
		}

		arrival, _ := item.Text(arrivalTimeFields...)

		stops = append(stops, domain.Stop{
			Name:        stopName(item, i),
			Lat:         lat,
			Lon:         lon,
			ArrivalTime: arrival,
			Students:    item.Count(studentFields...),
		})
	}
	return stops
}

func removedStops(items []Body) []domain.RemovedStop {
	out := make([]domain.RemovedStop, 0, len(items))
	for i, item := range items {
		out = append(out, domain.RemovedStop{
			Name:     stopName(item, i),
			Students: item.Count(studentFields...),
		})
	}
	return out
}

// stopName resolves the display name; position is the 0-based index in the
// optimizer's list and only used when no name field is present.
func stopName(item Body, position int) string {
	if name, ok := item.Text(stopNameFields...); ok {
		return name
	}
	return fmt.Sprintf("Stop %d", position+1)
}
