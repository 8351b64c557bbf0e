package ews

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

const calendarListTTL = 5 * time.Minute

// Client adapts on-premises Exchange Web Services to the provider
// interface. zone is the authoritative IANA zone used to interpret the
// naive datetimes EWS returns.
type Client struct {
	endpoint   string
	username   string
	password   string
	mailbox    string
	zone       *time.Location
	zoneName   string
	httpClient *http.Client

	mu          sync.Mutex
	connected   bool
	calCache    []model.Calendar
	calCachedAt time.Time
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates an EWS adapter. endpoint is the full Exchange.asmx
// URL; zoneName is the IANA zone the server's naive datetimes live in.
func NewClient(endpoint, username, password, mailbox, zoneName string) (*Client, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid EWS time zone %q: %w", zoneName, err)
	}
	return &Client{
		endpoint:   endpoint,
		username:   username,
		password:   password,
		mailbox:    mailbox,
		zone:       loc,
		zoneName:   zoneName,
		httpClient: &http.Client{Transport: newTransport(), Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) Type() model.ProviderType { return model.ProviderEWS }

// Connect probes the endpoint with a calendar folder listing.
func (c *Client) Connect(ctx context.Context) error {
	if _, err := c.findCalendarFolders(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.calCache = nil
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) findCalendarFolders(ctx context.Context) ([]folderEntry, error) {
	body := `    <m:FindFolder Traversal="Deep">
      <m:FolderShape><t:BaseShape>Default</t:BaseShape></m:FolderShape>
      <m:ParentFolderIds><t:DistinguishedFolderId Id="msgfolderroot"/></m:ParentFolderIds>
    </m:FindFolder>`

	resp, err := c.call(ctx, "folders.find", body)
	if err != nil {
		return nil, err
	}
	if resp.FindFolderResp == nil || len(resp.FindFolderResp.ResponseMessages.FindFolderResponseMessage) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"folders.find", "empty FindFolder response", nil)
	}
	msg := resp.FindFolderResp.ResponseMessages.FindFolderResponseMessage[0]
	if err := checkResponse(msg.responseMessage, "folders.find"); err != nil {
		return nil, err
	}
	return msg.RootFolder.Folders.CalendarFolder, nil
}

func (c *Client) ListCalendars(ctx context.Context) ([]model.Calendar, error) {
	c.mu.Lock()
	if c.calCache != nil && time.Since(c.calCachedAt) < calendarListTTL {
		cached := c.calCache
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	folders, err := c.findCalendarFolders(ctx)
	if err != nil {
		return nil, err
	}

	calendars := make([]model.Calendar, 0, len(folders))
	for i, f := range folders {
		calendars = append(calendars, model.Calendar{
			ID:        f.FolderID.ID,
			Provider:  model.ProviderEWS,
			Name:      f.DisplayName,
			IsPrimary: i == 0 || f.DisplayName == "Calendar",
			CanEdit:   true,
			TimeZone:  c.zoneName,
		})
	}

	c.mu.Lock()
	c.calCache = calendars
	c.calCachedAt = time.Now()
	c.mu.Unlock()
	return calendars, nil
}

// parentFolder renders either a distinguished calendar folder or an
// explicit folder id.
func parentFolder(calendarID string) string {
	if calendarID == "" {
		return `<t:DistinguishedFolderId Id="calendar"/>`
	}
	return fmt.Sprintf(`<t:FolderId Id="%s"/>`, esc(calendarID))
}

func (c *Client) ListEvents(ctx context.Context, opts provider.ListOptions) ([]model.CalendarEvent, error) {
	calendarIDs := opts.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = []string{""}
	}

	var events []model.CalendarEvent
	for _, calID := range calendarIDs {
		body := fmt.Sprintf(`    <m:FindItem Traversal="Shallow">
      <m:ItemShape><t:BaseShape>AllProperties</t:BaseShape></m:ItemShape>
      <m:CalendarView StartDate="%s" EndDate="%s"/>
      <m:ParentFolderIds>%s</m:ParentFolderIds>
    </m:FindItem>`,
			opts.Start.In(c.zone).Format(ewsTimeLayout),
			opts.End.In(c.zone).Format(ewsTimeLayout),
			parentFolder(calID))

		resp, err := c.call(ctx, "events.list", body)
		if err != nil {
			return nil, err
		}
		if resp.FindItemResp == nil || len(resp.FindItemResp.ResponseMessages.FindItemResponseMessage) == 0 {
			return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
				"events.list", "empty FindItem response", nil)
		}
		msg := resp.FindItemResp.ResponseMessages.FindItemResponseMessage[0]
		if err := checkResponse(msg.responseMessage, "events.list"); err != nil {
			return nil, err
		}
		for _, item := range msg.RootFolder.Items.CalendarItem {
			ev, err := c.toEvent(&item, calID)
			if err != nil {
				continue
			}
			if opts.Query != "" && !strings.Contains(strings.ToLower(ev.Subject), strings.ToLower(opts.Query)) {
				continue
			}
			events = append(events, *ev)
		}
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, eventID, calendarID string) (*model.CalendarEvent, error) {
	body := fmt.Sprintf(`    <m:GetItem>
      <m:ItemShape><t:BaseShape>AllProperties</t:BaseShape></m:ItemShape>
      <m:ItemIds><t:ItemId Id="%s"/></m:ItemIds>
    </m:GetItem>`, esc(eventID))

	resp, err := c.call(ctx, "events.get", body)
	if err != nil {
		return nil, err
	}
	if resp.GetItemResp == nil || len(resp.GetItemResp.ResponseMessages.GetItemResponseMessage) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.get", "empty GetItem response", nil)
	}
	msg := resp.GetItemResp.ResponseMessages.GetItemResponseMessage[0]
	if err := checkResponse(msg.responseMessage, "events.get"); err != nil {
		return nil, err
	}
	if len(msg.Items.CalendarItem) == 0 {
		return nil, model.NewProviderError(model.ErrKindNotFound, model.ProviderEWS,
			"events.get", fmt.Sprintf("event %s not found", eventID), nil)
	}
	return c.toEvent(&msg.Items.CalendarItem[0], calendarID)
}

func (c *Client) CreateEvent(ctx context.Context, params provider.CreateEventParams) (*model.CalendarEvent, error) {
	sendMode := "SendToNone"
	if params.SendInvites && len(params.Attendees) > 0 {
		sendMode = "SendOnlyToAll"
	}

	body := fmt.Sprintf(`    <m:CreateItem SendMeetingInvitations="%s">
      <m:SavedItemFolderId>%s</m:SavedItemFolderId>
      <m:Items>
        <t:CalendarItem>
%s        </t:CalendarItem>
      </m:Items>
    </m:CreateItem>`, sendMode, parentFolder(params.CalendarID), c.calendarItemFields(params))

	resp, err := c.call(ctx, "events.create", body)
	if err != nil {
		return nil, err
	}
	if resp.CreateItemResp == nil || len(resp.CreateItemResp.ResponseMessages.CreateItemResponseMessage) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.create", "empty CreateItem response", nil)
	}
	msg := resp.CreateItemResp.ResponseMessages.CreateItemResponseMessage[0]
	if err := checkResponse(msg.responseMessage, "events.create"); err != nil {
		return nil, err
	}
	if len(msg.Items.CalendarItem) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.create", "CreateItem returned no item", nil)
	}

	// CreateItem responses carry only the item id; fetch the full item.
	return c.GetEvent(ctx, msg.Items.CalendarItem[0].ItemID.ID, params.CalendarID)
}

// calendarItemFields renders the CalendarItem children in schema order.
func (c *Client) calendarItemFields(params provider.CreateEventParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "          <t:Subject>%s</t:Subject>\n", esc(params.Subject))
	if params.Body != "" {
		fmt.Fprintf(&b, "          <t:Body BodyType=\"Text\">%s</t:Body>\n", esc(params.Body))
	}
	fmt.Fprintf(&b, "          <t:Start>%s</t:Start>\n", params.Start.In(c.zone).Format(ewsTimeLayout))
	fmt.Fprintf(&b, "          <t:End>%s</t:End>\n", params.End.In(c.zone).Format(ewsTimeLayout))
	if params.IsAllDay {
		b.WriteString("          <t:IsAllDayEvent>true</t:IsAllDayEvent>\n")
	}
	if params.ShowAs != "" {
		fmt.Fprintf(&b, "          <t:LegacyFreeBusyStatus>%s</t:LegacyFreeBusyStatus>\n", fromShowAs(params.ShowAs))
	}
	if params.Location != "" {
		fmt.Fprintf(&b, "          <t:Location>%s</t:Location>\n", esc(params.Location))
	}
	var required, optional []model.Attendee
	for _, att := range params.Attendees {
		if att.Type == model.AttendeeOptional {
			optional = append(optional, att)
		} else {
			required = append(required, att)
		}
	}
	writeAttendees := func(tag string, attendees []model.Attendee) {
		if len(attendees) == 0 {
			return
		}
		fmt.Fprintf(&b, "          <t:%s>\n", tag)
		for _, att := range attendees {
			fmt.Fprintf(&b, "            <t:Attendee><t:Mailbox><t:EmailAddress>%s</t:EmailAddress></t:Mailbox></t:Attendee>\n", esc(att.Email))
		}
		fmt.Fprintf(&b, "          </t:%s>\n", tag)
	}
	writeAttendees("RequiredAttendees", required)
	writeAttendees("OptionalAttendees", optional)
	if params.Recurrence != nil {
		b.WriteString(c.recurrenceXML(params.Recurrence, params.Start))
	}
	return b.String()
}

// recurrenceXML renders the EWS Recurrence element. EWS splits the pattern
// (cadence) from the range (bounds), unlike RFC 5545's single RRULE.
func (c *Client) recurrenceXML(p *model.RecurrencePattern, start time.Time) string {
	interval := p.Interval
	if interval <= 0 {
		interval = 1
	}

	var pattern string
	switch p.Type {
	case model.RecurDaily:
		pattern = fmt.Sprintf("<t:DailyRecurrence><t:Interval>%d</t:Interval></t:DailyRecurrence>", interval)
	case model.RecurWeekly:
		days := make([]string, 0, len(p.DaysOfWeek))
		for _, d := range p.DaysOfWeek {
			days = append(days, d.String())
		}
		if len(days) == 0 {
			days = []string{start.In(c.zone).Weekday().String()}
		}
		pattern = fmt.Sprintf("<t:WeeklyRecurrence><t:Interval>%d</t:Interval><t:DaysOfWeek>%s</t:DaysOfWeek></t:WeeklyRecurrence>",
			interval, strings.Join(days, " "))
	case model.RecurMonthly:
		day := p.DayOfMonth
		if day == 0 {
			day = start.In(c.zone).Day()
		}
		pattern = fmt.Sprintf("<t:AbsoluteMonthlyRecurrence><t:Interval>%d</t:Interval><t:DayOfMonth>%d</t:DayOfMonth></t:AbsoluteMonthlyRecurrence>",
			interval, day)
	case model.RecurYearly:
		local := start.In(c.zone)
		pattern = fmt.Sprintf("<t:AbsoluteYearlyRecurrence><t:DayOfMonth>%d</t:DayOfMonth><t:Month>%s</t:Month></t:AbsoluteYearlyRecurrence>",
			local.Day(), local.Month().String())
	default:
		return ""
	}

	startDate := start.In(c.zone).Format("2006-01-02")
	var bounds string
	switch {
	case p.Count > 0:
		bounds = fmt.Sprintf("<t:NumberedRecurrence><t:StartDate>%s</t:StartDate><t:NumberOfOccurrences>%d</t:NumberOfOccurrences></t:NumberedRecurrence>",
			startDate, p.Count)
	case p.Until != nil:
		bounds = fmt.Sprintf("<t:EndDateRecurrence><t:StartDate>%s</t:StartDate><t:EndDate>%s</t:EndDate></t:EndDateRecurrence>",
			startDate, p.Until.In(c.zone).Format("2006-01-02"))
	default:
		bounds = fmt.Sprintf("<t:NoEndRecurrence><t:StartDate>%s</t:StartDate></t:NoEndRecurrence>", startDate)
	}

	return fmt.Sprintf("          <t:Recurrence>%s%s</t:Recurrence>\n", pattern, bounds)
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, params provider.UpdateEventParams, calendarID string) (*model.CalendarEvent, error) {
	if params.Scope == provider.ScopeThisAndFuture {
		return nil, model.NewProviderError(model.ErrKindInvalidInput, model.ProviderEWS,
			"events.update", "thisAndFuture scope is not supported by the ews adapter", nil)
	}

	var sets strings.Builder
	setField := func(fieldURI, element, value string) {
		fmt.Fprintf(&sets, `        <t:SetItemField>
          <t:FieldURI FieldURI="%s"/>
          <t:CalendarItem><t:%s>%s</t:%s></t:CalendarItem>
        </t:SetItemField>
`, fieldURI, element, value, element)
	}
	if params.Subject != nil {
		setField("item:Subject", "Subject", esc(*params.Subject))
	}
	if params.Body != nil {
		fmt.Fprintf(&sets, `        <t:SetItemField>
          <t:FieldURI FieldURI="item:Body"/>
          <t:CalendarItem><t:Body BodyType="Text">%s</t:Body></t:CalendarItem>
        </t:SetItemField>
`, esc(*params.Body))
	}
	if params.Location != nil {
		setField("calendar:Location", "Location", esc(*params.Location))
	}
	if params.Start != nil {
		setField("calendar:Start", "Start", params.Start.In(c.zone).Format(ewsTimeLayout))
	}
	if params.End != nil {
		setField("calendar:End", "End", params.End.In(c.zone).Format(ewsTimeLayout))
	}
	if params.ShowAs != nil {
		setField("calendar:LegacyFreeBusyStatus", "LegacyFreeBusyStatus", fromShowAs(*params.ShowAs))
	}

	body := fmt.Sprintf(`    <m:UpdateItem ConflictResolution="AutoResolve" SendMeetingInvitationsOrCancellations="SendToNone">
      <m:ItemChanges>
        <t:ItemChange>
          <t:ItemId Id="%s"/>
          <t:Updates>
%s          </t:Updates>
        </t:ItemChange>
      </m:ItemChanges>
    </m:UpdateItem>`, esc(eventID), sets.String())

	resp, err := c.call(ctx, "events.update", body)
	if err != nil {
		return nil, err
	}
	if resp.UpdateItemResp == nil || len(resp.UpdateItemResp.ResponseMessages.UpdateItemResponseMessage) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.update", "empty UpdateItem response", nil)
	}
	msg := resp.UpdateItemResp.ResponseMessages.UpdateItemResponseMessage[0]
	if err := checkResponse(msg.responseMessage, "events.update"); err != nil {
		return nil, err
	}
	return c.GetEvent(ctx, eventID, calendarID)
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string, opts provider.DeleteOptions, calendarID string) error {
	if opts.Scope == provider.ScopeThisAndFuture {
		return model.NewProviderError(model.ErrKindInvalidInput, model.ProviderEWS,
			"events.delete", "thisAndFuture scope is not supported by the ews adapter", nil)
	}
	sendMode := "SendToNone"
	if opts.Notify {
		sendMode = "SendOnlyToAll"
	}

	body := fmt.Sprintf(`    <m:DeleteItem DeleteType="MoveToDeletedItems" SendMeetingCancellations="%s">
      <m:ItemIds><t:ItemId Id="%s"/></m:ItemIds>
    </m:DeleteItem>`, sendMode, esc(eventID))

	resp, err := c.call(ctx, "events.delete", body)
	if err != nil {
		return err
	}
	if resp.DeleteItemResp == nil || len(resp.DeleteItemResp.ResponseMessages.DeleteItemResponseMessage) == 0 {
		return model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.delete", "empty DeleteItem response", nil)
	}
	return checkResponse(resp.DeleteItemResp.ResponseMessages.DeleteItemResponseMessage[0], "events.delete")
}

func (c *Client) GetFreeBusy(ctx context.Context, start, end time.Time, calendarIDs []string) ([]provider.CalendarFreeBusy, error) {
	body := fmt.Sprintf(`    <m:GetUserAvailabilityRequest>
      <t:TimeZone>
        <t:Bias>0</t:Bias>
        <t:StandardTime><t:Bias>0</t:Bias><t:Time>00:00:00</t:Time><t:DayOrder>1</t:DayOrder><t:Month>1</t:Month><t:DayOfWeek>Sunday</t:DayOfWeek></t:StandardTime>
        <t:DaylightTime><t:Bias>0</t:Bias><t:Time>00:00:00</t:Time><t:DayOrder>1</t:DayOrder><t:Month>1</t:Month><t:DayOfWeek>Sunday</t:DayOfWeek></t:DaylightTime>
      </t:TimeZone>
      <m:MailboxDataArray>
        <t:MailboxData>
          <t:Email><t:Address>%s</t:Address></t:Email>
          <t:AttendeeType>Required</t:AttendeeType>
        </t:MailboxData>
      </m:MailboxDataArray>
      <t:FreeBusyViewOptions>
        <t:TimeWindow><t:StartTime>%s</t:StartTime><t:EndTime>%s</t:EndTime></t:TimeWindow>
        <t:RequestedView>FreeBusy</t:RequestedView>
      </t:FreeBusyViewOptions>
    </m:GetUserAvailabilityRequest>`,
		esc(c.mailbox),
		start.UTC().Format(ewsTimeLayout),
		end.UTC().Format(ewsTimeLayout))

	resp, err := c.call(ctx, "freebusy.query", body)
	if err != nil {
		return nil, err
	}
	if resp.AvailabilityResp == nil || len(resp.AvailabilityResp.FreeBusyResponseArray.FreeBusyResponse) == 0 {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"freebusy.query", "empty availability response", nil)
	}

	var out []provider.CalendarFreeBusy
	for _, fbr := range resp.AvailabilityResp.FreeBusyResponseArray.FreeBusyResponse {
		if err := checkResponse(fbr.ResponseMessage, "freebusy.query"); err != nil {
			return nil, err
		}
		fb := provider.CalendarFreeBusy{CalendarID: c.mailbox, CalendarName: c.mailbox}
		for _, ev := range fbr.FreeBusyView.CalendarEventArray.CalendarEvent {
			slot, err := c.toBusySlot(ev)
			if err != nil || slot.Status == model.ShowAsFree {
				continue
			}
			fb.Busy = append(fb.Busy, slot)
		}
		out = append(out, fb)
	}
	return out, nil
}

// RespondToEvent creates the well-known response item referencing the
// meeting; Exchange handles organizer notification.
func (c *Client) RespondToEvent(ctx context.Context, eventID string, response provider.EventResponse, calendarID, message string) error {
	var element string
	switch response {
	case provider.RespondAccept:
		element = "AcceptItem"
	case provider.RespondDecline:
		element = "DeclineItem"
	case provider.RespondTentative:
		element = "TentativelyAcceptItem"
	default:
		return model.NewProviderError(model.ErrKindInvalidInput, model.ProviderEWS,
			"events.respond", fmt.Sprintf("unknown response %q", response), nil)
	}

	messageXML := ""
	if message != "" {
		messageXML = fmt.Sprintf("<t:Body BodyType=\"Text\">%s</t:Body>", esc(message))
	}

	body := fmt.Sprintf(`    <m:CreateItem MessageDisposition="SendAndSaveCopy">
      <m:Items>
        <t:%s>
          %s<t:ReferenceItemId Id="%s"/>
        </t:%s>
      </m:Items>
    </m:CreateItem>`, element, messageXML, esc(eventID), element)

	resp, err := c.call(ctx, "events.respond", body)
	if err != nil {
		return err
	}
	if resp.CreateItemResp == nil || len(resp.CreateItemResp.ResponseMessages.CreateItemResponseMessage) == 0 {
		return model.NewProviderError(model.ErrKindInternal, model.ProviderEWS,
			"events.respond", "empty CreateItem response", nil)
	}
	return checkResponse(resp.CreateItemResp.ResponseMessages.CreateItemResponseMessage[0].responseMessage, "events.respond")
}
