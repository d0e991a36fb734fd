package domain

import "time"

// BookedSeats sums the group sizes of all bookings still holding seats.
func BookedSeats(bookings []Booking) int {
	booked := 0
	for i := range bookings {
		if bookings[i].CountsAgainstCapacity() {
			booked += bookings[i].GroupSize
		}
	}
	return booked
}

// Remaining computes the seats left for one activity+day given its
// capacity and the bookings already recorded for that day. Pure and
// deterministic: the admission path calls it inside the slot lock
// (authoritative), the availability calendar calls it without locking
// (advisory).
func Remaining(capacity int, bookings []Booking) int {
	remaining := capacity - BookedSeats(bookings)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DayAvailability is one entry of the availability calendar.
type DayAvailability struct {
	Date           time.Time
	AvailableSeats int
	TotalCapacity  int
}
