package transport

import "encoding/json"

// Seed loads the demo fleet data set. Existing rows keep their values;
// it is safe to call on every start.
func (s *Store) Seed() error {
	var count int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM Stops`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	stops := [][]any{
		{"S001", "Tech Park Gate 1", 12.9352, 77.6245},
		{"S002", "Whitefield Main", 12.9698, 77.7499},
		{"S003", "Electronic City Phase 1", 12.8456, 77.6603},
		{"S004", "Marathahalli Junction", 12.9591, 77.6974},
		{"S005", "Silk Board", 12.9165, 77.6229},
		{"S006", "Koramangala", 12.9352, 77.6245},
		{"S007", "HSR Layout", 12.9116, 77.6382},
		{"S008", "BTM Layout", 12.9165, 77.6101},
		{"S009", "JP Nagar", 12.9081, 77.5854},
		{"S010", "Bannerghatta Road", 12.8892, 77.5955},
	}
	for _, row := range stops {
		if _, err := s.DB.Exec(`INSERT INTO Stops VALUES (?, ?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	paths := [][]any{
		{"P001", "North Corridor Route", stopList("S001", "S002", "S004", "S003")},
		{"P002", "South Corridor Route", stopList("S005", "S006", "S007", "S008")},
		{"P003", "East Express Route", stopList("S002", "S004", "S001")},
		{"P004", "West Circular Route", stopList("S006", "S005", "S009", "S010")},
		{"P005", "Central Loop", stopList("S001", "S005", "S006", "S003")},
	}
	for _, row := range paths {
		if _, err := s.DB.Exec(`INSERT INTO Paths VALUES (?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	routes := [][]any{
		{"R001", "P001", "North Corridor - Morning Shift", "08:00 AM", "Inbound", "Tech Park Gate 1", "Electronic City Phase 1", 45, 5, "active"},
		{"R002", "P002", "South Corridor - Evening Shift", "06:00 PM", "Outbound", "Silk Board", "BTM Layout", 40, 5, "active"},
		{"R003", "P003", "East Express - Morning", "07:30 AM", "Inbound", "Whitefield Main", "Tech Park Gate 1", 50, 7, "active"},
		{"R004", "P004", "West Circular - Afternoon", "02:00 PM", "Outbound", "Koramangala", "Bannerghatta Road", 35, 3, "active"},
		{"R005", "P005", "Central Loop - Night Shift", "10:00 PM", "Inbound", "Tech Park Gate 1", "Electronic City Phase 1", 30, 3, "deactivated"},
		{"R006", "P001", "North Corridor - Evening Return", "06:30 PM", "Outbound", "Electronic City Phase 1", "Tech Park Gate 1", 45, 5, "active"},
		{"R007", "P002", "South Corridor - Morning", "08:30 AM", "Inbound", "BTM Layout", "Silk Board", 40, 5, "active"},
		{"R008", "P003", "East Express - Evening", "05:45 PM", "Outbound", "Tech Park Gate 1", "Whitefield Main", 50, 7, "deactivated"},
	}
	for _, row := range routes {
		if _, err := s.DB.Exec(`INSERT INTO Routes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	vehicles := [][]any{
		{"V001", "KA-01-AB-1234", "Bus", 45},
		{"V002", "KA-02-CD-5678", "Bus", 45},
		{"V003", "KA-03-EF-9012", "Bus", 40},
		{"V004", "KA-04-GH-3456", "Bus", 50},
		{"V005", "KA-05-IJ-7890", "Cab", 4},
		{"V006", "KA-06-KL-2345", "Cab", 4},
		{"V007", "KA-07-MN-6789", "Bus", 35},
		{"V008", "KA-08-OP-0123", "Bus", 45},
	}
	for _, row := range vehicles {
		if _, err := s.DB.Exec(`INSERT INTO Vehicles VALUES (?, ?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	drivers := [][]any{
		{"D001", "Rajesh Kumar", "+91-9876543210"},
		{"D002", "Amit Singh", "+91-9876543211"},
		{"D003", "Priya Sharma", "+91-9876543212"},
		{"D004", "Vijay Reddy", "+91-9876543213"},
		{"D005", "Suresh Babu", "+91-9876543214"},
		{"D006", "Lakshmi Devi", "+91-9876543215"},
		{"D007", "Ramesh Patil", "+91-9876543216"},
		{"D008", "Anita Desai", "+91-9876543217"},
	}
	for _, row := range drivers {
		if _, err := s.DB.Exec(`INSERT INTO Drivers VALUES (?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	trips := [][]any{
		{"T001", "R001", "North Corridor - Morning Shift - Trip 1", 85, "00:15 IN"},
		{"T002", "R002", "South Corridor - Evening Shift - Trip 1", 92, "Scheduled"},
		{"T003", "R001", "North Corridor - Morning Shift - Trip 2", 78, "00:45 IN"},
		{"T004", "R003", "East Express - Morning - Trip 1", 95, "01:20 IN"},
		{"T005", "R004", "West Circular - Afternoon - Trip 1", 65, "Scheduled"},
		{"T006", "R006", "North Corridor - Evening Return - Trip 1", 88, "En Route"},
		{"T007", "R007", "South Corridor - Morning - Trip 1", 72, "00:30 IN"},
		{"T008", "R003", "East Express - Morning - Trip 2", 81, "Scheduled"},
	}
	for _, row := range trips {
		if _, err := s.DB.Exec(`INSERT INTO DailyTrips VALUES (?, ?, ?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	deployments := [][]any{
		{"DP001", "T001", "V001", "D001"},
		{"DP002", "T002", "V002", "D002"},
		{"DP003", "T003", "V003", "D003"},
		{"DP004", "T004", "V004", "D004"},
		{"DP005", "T005", "V005", "D005"},
		{"DP006", "T006", "V006", "D006"},
		{"DP007", "T007", "V007", "D007"},
		{"DP008", "T008", nil, nil}, // unassigned trip
	}
	for _, row := range deployments {
		if _, err := s.DB.Exec(`INSERT INTO Deployments VALUES (?, ?, ?, ?)`, row...); err != nil {
			return err
		}
	}

	return nil
}

func stopList(ids ...string) string {
	raw, _ := json.Marshal(ids)
	return string(raw)
}
