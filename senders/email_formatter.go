package senders

import (
	"fmt"

	"github.com/fiffu/guardwatch/lib/models"
)

type alertEmailFormat struct {
	*models.AlertPayload
}

func (ef *alertEmailFormat) Subject() string {
	return fmt.Sprintf("Guardwatch: %s needs help", ef.FullName)
}

func (ef *alertEmailFormat) Body() string {
	location := "Location unavailable"
	if ef.Location != nil {
		url := fmt.Sprintf("https://maps.google.com/?q=%f,%f", ef.Location.Latitude, ef.Location.Longitude)
		location = fmt.Sprintf(`Last known location: <a href="%s">%s</a>`, url, url)
	}
	return fmt.Sprintf(
		`
			<h3>%s needs help</h3>
			<br>
			Contact: %s %s
			<br>
			%s
		`,
		ef.FullName,
		ef.Email, ef.PhoneNumber,
		location,
	)
}

type enrollmentEmailFormat struct {
	guardianName string
	ownerName    string
}

func (ef *enrollmentEmailFormat) Subject() string {
	return fmt.Sprintf("Guardwatch: %s added you as a guardian", ef.ownerName)
}

func (ef *enrollmentEmailFormat) Body() string {
	return fmt.Sprintf(
		`Hi %s,<br>%s enrolled you as an emergency contact. You will be notified when they trigger a help alert.`,
		ef.guardianName, ef.ownerName,
	)
}
