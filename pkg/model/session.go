package model

import "time"

type Session struct {
	SessionKey       int       `json:"session_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	DateStart        time.Time `json:"date_start"`
	DateEnd          time.Time `json:"date_end"`
	GmtOffset        string    `json:"gmt_offset"`
	MeetingKey       int       `json:"meeting_key"`
	Location         string    `json:"location"`
	CountryName      string    `json:"country_name"`
	CountryCode      string    `json:"country_code"`
	CircuitKey       int       `json:"circuit_key"`
	CircuitShortName string    `json:"circuit_short_name"`
	Year             int       `json:"year"`
}

type Driver struct {
	SessionKey    int    `json:"session_key"`
	MeetingKey    int    `json:"meeting_key"`
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	HeadshotURL   string `json:"headshot_url"`
	CountryCode   string `json:"country_code"`
}

// SessionData holds everything the analytics need for one session.
type SessionData struct {
	Session  Session         `json:"session"`
	Drivers  []Driver        `json:"drivers"`
	Laps     []LapRecord     `json:"laps"`
	Stints   []StintRecord   `json:"stints"`
	PitStops []PitStopRecord `json:"pitStops"`
}

// DriverNumbers returns the driver numbers in driver list order.
// If no driver list is present the numbers are taken from the laps
// in order of first appearance.
func (s *SessionData) DriverNumbers() []int {
	seen := make(map[int]bool)
	ret := make([]int, 0, len(s.Drivers))
	add := func(num int) {
		if !seen[num] {
			seen[num] = true
			ret = append(ret, num)
		}
	}
	for i := range s.Drivers {
		add(s.Drivers[i].DriverNumber)
	}
	if len(ret) > 0 {
		return ret
	}
	for i := range s.Laps {
		add(s.Laps[i].DriverNumber)
	}
	return ret
}
