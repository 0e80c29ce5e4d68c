package model

import "fmt"

// Service identifies one of the transport/venue services managed by the
// system.  Each service has its own seat layout and pricing table.  The
// single-letter keys match the record files used by the original operator
// console and are kept as the canonical wire form.
type Service string

const (
	ServiceCinema   Service = "C"
	ServiceBus      Service = "B"
	ServiceAirplane Service = "A"
)

// Services returns all configured services in a stable order.  Callers that
// iterate over every service (sweeps, statistics) rely on this order being
// deterministic.
func Services() []Service {
	return []Service{ServiceCinema, ServiceBus, ServiceAirplane}
}

// Name returns the human-readable service name used on tickets and reports.
func (s Service) Name() string {
	switch s {
	case ServiceCinema:
		return "Cinema"
	case ServiceBus:
		return "Bus"
	case ServiceAirplane:
		return "Airplane"
	}
	return "Unknown"
}

// Valid reports whether s is one of the configured services.
func (s Service) Valid() bool {
	switch s {
	case ServiceCinema, ServiceBus, ServiceAirplane:
		return true
	}
	return false
}

// ParseService converts raw user input (key or full name, any case) into a
// Service.  It returns an error for anything it does not recognise so that
// handlers can reject unknown services with a 404.
func ParseService(raw string) (Service, error) {
	switch raw {
	case "C", "c", "Cinema", "cinema", "CINEMA":
		return ServiceCinema, nil
	case "B", "b", "Bus", "bus", "BUS":
		return ServiceBus, nil
	case "A", "a", "Airplane", "airplane", "AIRPLANE":
		return ServiceAirplane, nil
	}
	return "", fmt.Errorf("unknown service %q", raw)
}
