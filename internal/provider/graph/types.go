package graph

// Wire shapes for the Graph endpoints this adapter touches. Field sets are
// limited to what the unified model carries.

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphResponseStatus struct {
	Response string `json:"response"`
	Time     string `json:"time,omitempty"`
}

type graphAttendee struct {
	EmailAddress graphEmailAddress    `json:"emailAddress"`
	Type         string               `json:"type,omitempty"`
	Status       *graphResponseStatus `json:"status,omitempty"`
}

type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphEvent struct {
	ID                  string          `json:"id,omitempty"`
	Subject             string          `json:"subject"`
	Body                *graphItemBody  `json:"body,omitempty"`
	BodyPreview         string          `json:"bodyPreview,omitempty"`
	Start               *graphDateTime  `json:"start,omitempty"`
	End                 *graphDateTime  `json:"end,omitempty"`
	IsAllDay            bool            `json:"isAllDay"`
	IsCancelled         bool            `json:"isCancelled,omitempty"`
	ShowAs              string          `json:"showAs,omitempty"`
	Sensitivity         string          `json:"sensitivity,omitempty"`
	Location            *graphLocation  `json:"location,omitempty"`
	Organizer           *graphRecipient `json:"organizer,omitempty"`
	Attendees           []graphAttendee `json:"attendees,omitempty"`
	ICalUID             string          `json:"iCalUId,omitempty"`
	SeriesMasterID      string          `json:"seriesMasterId,omitempty"`
	EventType           string          `json:"type,omitempty"`
	OriginalStart       string          `json:"originalStart,omitempty"`
	ResponseRequested   *bool           `json:"responseRequested,omitempty"`
	OriginalStartTZ     string          `json:"originalStartTimeZone,omitempty"`
}

type graphEventList struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

type graphCalendar struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CanEdit   bool   `json:"canEdit"`
	IsDefault bool   `json:"isDefaultCalendar"`
}

type graphCalendarList struct {
	Value []graphCalendar `json:"value"`
}

type graphScheduleItem struct {
	Start  graphDateTime `json:"start"`
	End    graphDateTime `json:"end"`
	Status string        `json:"status"`
}

type graphScheduleInfo struct {
	ScheduleID    string              `json:"scheduleId"`
	ScheduleItems []graphScheduleItem `json:"scheduleItems"`
}

type graphScheduleResponse struct {
	Value []graphScheduleInfo `json:"value"`
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
