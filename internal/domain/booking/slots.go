package booking

// SlotMinutes is the fixed booking granularity.
const SlotMinutes = 30

// Slots enumerates the bookable times within the window: every
// SlotMinutes step from start through end, upper bound inclusive (the
// last slot starts at closing time). A window whose end precedes its
// start yields no slots; window creation rejects such configurations.
func (w *ScheduleWindow) Slots() []TimeOfDay {
	var slots []TimeOfDay
	for t := w.Start; t <= w.End; t = t.AddMinutes(SlotMinutes) {
		slots = append(slots, t)
	}
	return slots
}
