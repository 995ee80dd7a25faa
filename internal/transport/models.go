package transport

// Records exposed over the operational CRUD surface. Field names mirror
// the database columns.

type Stop struct {
	StopID    string  `json:"stop_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Path struct {
	PathID   string   `json:"path_id"`
	PathName string   `json:"path_name"`
	StopIDs  []string `json:"ordered_list_of_stop_ids"`
}

type Route struct {
	RouteID         string `json:"route_id"`
	PathID          string `json:"path_id"`
	DisplayName     string `json:"route_display_name"`
	ShiftTime       string `json:"shift_time"`
	Direction       string `json:"direction"`
	StartPoint      string `json:"start_point"`
	EndPoint        string `json:"end_point"`
	Capacity        int    `json:"capacity"`
	AllowedWaitlist int    `json:"allowed_waitlist"`
	Status          string `json:"status"`
}

type Vehicle struct {
	VehicleID    string `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Type         string `json:"type"`
	Capacity     int    `json:"capacity"`
}

type Driver struct {
	DriverID    string `json:"driver_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type Deployment struct {
	DeploymentID string  `json:"deployment_id"`
	TripID       string  `json:"trip_id"`
	VehicleID    *string `json:"vehicle_id"`
	DriverID     *string `json:"driver_id"`
}

// TripDetail is the joined daily-trips view: trip plus its route name
// and current deployment, if any.
type TripDetail struct {
	TripID            string  `json:"trip_id"`
	RouteID           string  `json:"route_id"`
	DisplayName       string  `json:"display_name"`
	BookingPercentage int     `json:"booking_status_percentage"`
	LiveStatus        string  `json:"live_status"`
	RouteName         *string `json:"route_name"`
	DeploymentID      *string `json:"deployment_id"`
	VehicleID         *string `json:"vehicle_id"`
	DriverID          *string `json:"driver_id"`
	LicensePlate      *string `json:"license_plate"`
	VehicleType       *string `json:"vehicle_type"`
	DriverName        *string `json:"driver_name"`
	DriverPhone       *string `json:"driver_phone"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalTrips    int `json:"total_trips"`
	TotalVehicles int `json:"total_vehicles"`
	TotalDrivers  int `json:"total_drivers"`
}
