package domain

import (
	"strings"
	"time"
)

var weekdayLabels = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "dimanche": time.Sunday, "dim": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "lundi": time.Monday, "lun": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "mardi": time.Tuesday, "mar": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "mercredi": time.Wednesday, "mer": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday, "jeudi": time.Thursday, "jeu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "vendredi": time.Friday, "ven": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "samedi": time.Saturday, "sam": time.Saturday,
}

var frenchWeekdays = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

// ParseWeekday accepts English and French day names or their usual
// abbreviations, ignoring case, accents and surrounding spaces.
func ParseWeekday(label string) (time.Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.TrimSuffix(key, ".")
	key = foldAccents(key)
	day, ok := weekdayLabels[key]
	return day, ok
}

// WeekdayLabel is the display label used on stops and receipts.
func WeekdayLabel(day time.Weekday) string {
	return frenchWeekdays[day%7]
}

var accentFolder = strings.NewReplacer("é", "e", "è", "e", "ê", "e", "à", "a", "â", "a", "î", "i", "ô", "o", "û", "u", "ç", "c")

func foldAccents(s string) string {
	return accentFolder.Replace(s)
}
