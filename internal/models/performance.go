package models

// SlotKey identifies a (format, location, day, time) combination.
// Teacher is optional; when set the aggregate is disaggregated per teacher.
type SlotKey struct {
	ClassFormat string
	Location    string
	Day         string
	Time        string
	Teacher     string
}

// SlotPerformance is the derived aggregate for one SlotKey: recomputed
// fresh from the full history on every run, never persisted.
type SlotPerformance struct {
	ClassFormat     string  `json:"classFormat"`
	Location        string  `json:"location"`
	Day             string  `json:"day"`
	Time            string  `json:"time"`
	Teacher         string  `json:"teacher,omitempty"`
	AvgParticipants float64 `json:"avgParticipants"`
	AvgRevenue      float64 `json:"avgRevenue"`
	Frequency       int     `json:"frequency"`
}

// LocationSummary aggregates historic performance for one location.
type LocationSummary struct {
	Location        string  `json:"location"`
	AvgParticipants float64 `json:"avgParticipants"`
	AvgRevenue      float64 `json:"avgRevenue"`
	TotalClasses    int     `json:"totalClasses"`
}

// TeacherUtilization reports scheduled weekly hours for one teacher.
type TeacherUtilization struct {
	Teacher     string  `json:"teacher"`
	WeeklyHours float64 `json:"weeklyHours"`
	Classes     int     `json:"classes"`
	DaysOff     int     `json:"daysOff"`
}
