package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Thin CRUD wrappers for the operational API. These never pass through
// the confirmation workflow; the dashboard owns its own guardrails.

func (s *Store) ListStops(ctx context.Context) ([]Stop, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT stop_id, name, latitude, longitude FROM Stops`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.StopID, &st.Name, &st.Latitude, &st.Longitude); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

func (s *Store) ListPaths(ctx context.Context) ([]Path, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT path_id, path_name, ordered_list_of_stop_ids FROM Paths`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []Path
	for rows.Next() {
		var p Path
		var raw string
		if err := rows.Scan(&p.PathID, &p.PathName, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &p.StopIDs); err != nil {
			return nil, fmt.Errorf("path %s has malformed stop list: %w", p.PathID, err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) ListRoutes(ctx context.Context, status string) ([]Route, error) {
	query := `SELECT route_id, path_id, route_display_name, shift_time, direction,
		start_point, end_point, capacity, allowed_waitlist, status FROM Routes`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		err := rows.Scan(&r.RouteID, &r.PathID, &r.DisplayName, &r.ShiftTime, &r.Direction,
			&r.StartPoint, &r.EndPoint, &r.Capacity, &r.AllowedWaitlist, &r.Status)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Store) CreateRoute(ctx context.Context, r Route) error {
	if r.Status == "" {
		r.Status = "active"
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO Routes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RouteID, r.PathID, r.DisplayName, r.ShiftTime, r.Direction,
		r.StartPoint, r.EndPoint, r.Capacity, r.AllowedWaitlist, r.Status)
	return err
}

// UpdateRoute applies only the fields present in the patch map.
func (s *Store) UpdateRoute(ctx context.Context, routeID string, patch map[string]any) error {
	allowed := []string{"path_id", "route_display_name", "shift_time", "direction",
		"start_point", "end_point", "capacity", "allowed_waitlist", "status"}

	var sets []string
	var args []any
	for _, col := range allowed {
		if v, ok := patch[col]; ok {
			sets = append(sets, col+" = ?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}

	args = append(args, routeID)
	query := fmt.Sprintf(`UPDATE Routes SET %s WHERE route_id = ?`, strings.Join(sets, ", "))
	_, err := s.DB.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) DeleteRoute(ctx context.Context, routeID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM Routes WHERE route_id = ?`, routeID)
	return err
}

func (s *Store) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT vehicle_id, license_plate, type, capacity FROM Vehicles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.VehicleID, &v.LicensePlate, &v.Type, &v.Capacity); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *Store) ListDrivers(ctx context.Context) ([]Driver, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT driver_id, name, phone_number FROM Drivers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.DriverID, &d.Name, &d.PhoneNumber); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (s *Store) ListDeployments(ctx context.Context) ([]Deployment, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT deployment_id, trip_id, vehicle_id, driver_id FROM Deployments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		var d Deployment
		if err := rows.Scan(&d.DeploymentID, &d.TripID, &d.VehicleID, &d.DriverID); err != nil {
			return nil, err
		}
		deployments = append(deployments, d)
	}
	return deployments, rows.Err()
}

// AssignDeployment sets the vehicle and driver for a deployment. Either
// may be nil to leave the slot unassigned.
func (s *Store) AssignDeployment(ctx context.Context, deploymentID string, vehicleID, driverID *string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE Deployments SET vehicle_id = ?, driver_id = ? WHERE deployment_id = ?`,
		vehicleID, driverID, deploymentID)
	return err
}

// ClearDeployment unassigns both vehicle and driver, leaving the
// deployment row in place.
func (s *Store) ClearDeployment(ctx context.Context, deploymentID string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE Deployments SET vehicle_id = NULL, driver_id = NULL WHERE deployment_id = ?`,
		deploymentID)
	return err
}

func (s *Store) ListTripDetails(ctx context.Context) ([]TripDetail, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT
			dt.trip_id,
			dt.route_id,
			dt.display_name,
			dt.booking_status_percentage,
			dt.live_status,
			r.route_display_name,
			d.deployment_id,
			d.vehicle_id,
			d.driver_id,
			v.license_plate,
			v.type,
			dr.name,
			dr.phone_number
		FROM DailyTrips dt
		LEFT JOIN Routes r ON dt.route_id = r.route_id
		LEFT JOIN Deployments d ON dt.trip_id = d.trip_id
		LEFT JOIN Vehicles v ON d.vehicle_id = v.vehicle_id
		LEFT JOIN Drivers dr ON d.driver_id = dr.driver_id
		ORDER BY dt.display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []TripDetail
	for rows.Next() {
		var t TripDetail
		err := rows.Scan(&t.TripID, &t.RouteID, &t.DisplayName, &t.BookingPercentage,
			&t.LiveStatus, &t.RouteName, &t.DeploymentID, &t.VehicleID, &t.DriverID,
			&t.LicensePlate, &t.VehicleType, &t.DriverName, &t.DriverPhone)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM DailyTrips`).Scan(&st.TotalTrips); err != nil {
		return st, err
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM Vehicles`).Scan(&st.TotalVehicles); err != nil {
		return st, err
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM Drivers`).Scan(&st.TotalDrivers); err != nil {
		return st, err
	}
	return st, nil
}
