package schedule

import "vrecorder/internal/model"

// Counts partitions a day's appointments by status
type Counts struct {
	Total  int                  `json:"total"`
	Status map[model.Status]int `json:"by_status"`
}

// CountByStatus tallies appointments. Every known status has an entry and
// the entries always sum to Total.
func CountByStatus(appointments []model.Appointment) Counts {
	c := Counts{Status: make(map[model.Status]int, len(model.Statuses))}
	for _, s := range model.Statuses {
		c.Status[s] = 0
	}
	for _, a := range appointments {
		c.Status[a.Status]++
		c.Total++
	}
	return c
}
