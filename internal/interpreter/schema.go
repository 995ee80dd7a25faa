package interpreter

// SchemaInfo describes the operational tables for prompt context. Kept
// in lockstep with internal/transport's DDL.
func SchemaInfo() string {
	return `
DATABASE SCHEMA:
================

1. Stops Table:
   - stop_id (TEXT, PRIMARY KEY) - Example: 'S001', 'S002'
   - name (TEXT) - Stop name
   - latitude (REAL) - Latitude coordinate
   - longitude (REAL) - Longitude coordinate

2. Paths Table:
   - path_id (TEXT, PRIMARY KEY) - Example: 'P001', 'P002'
   - path_name (TEXT) - Path name
   - ordered_list_of_stop_ids (TEXT, JSON format) - Example: '["S001", "S002", "S003"]'

3. Routes Table:
   - route_id (TEXT, PRIMARY KEY) - Example: 'R001', 'R002'
   - path_id (TEXT, FOREIGN KEY)
   - route_display_name (TEXT)
   - shift_time (TEXT)
   - direction (TEXT)
   - start_point (TEXT)
   - end_point (TEXT)
   - capacity (INTEGER)
   - allowed_waitlist (INTEGER)
   - status (TEXT, default 'active')

4. Vehicles Table:
   - vehicle_id (TEXT, PRIMARY KEY) - Example: 'V001', 'V002'
   - license_plate (TEXT, UNIQUE)
   - type (TEXT)
   - capacity (INTEGER)

5. Drivers Table:
   - driver_id (TEXT, PRIMARY KEY) - Example: 'D001', 'D002'
   - name (TEXT)
   - phone_number (TEXT)

6. DailyTrips Table:
   - trip_id (TEXT, PRIMARY KEY) - Example: 'T001', 'T002'
   - route_id (TEXT, FOREIGN KEY)
   - display_name (TEXT) - Trip display name
   - booking_status_percentage (INTEGER) - Percentage of bookings (0-100)
   - live_status (TEXT) - Status like 'Scheduled', 'En Route', '00:15 IN'

7. Deployments Table:
   - deployment_id (TEXT, PRIMARY KEY) - Example: 'DP001', 'DP002'
   - trip_id (TEXT, FOREIGN KEY)
   - vehicle_id (TEXT, FOREIGN KEY, can be NULL)
   - driver_id (TEXT, FOREIGN KEY, can be NULL)
`
}
