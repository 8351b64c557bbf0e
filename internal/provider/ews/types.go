package ews

import "encoding/xml"

// SOAP wire shapes for the EWS operations this adapter uses (Exchange 2013
// schema). Only the fields the unified model consumes are declared.

type soapEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault              *soapFault          `xml:"Fault"`
	FindItemResp       *findItemResponse   `xml:"FindItemResponse"`
	GetItemResp        *getItemResponse    `xml:"GetItemResponse"`
	CreateItemResp     *createItemResponse `xml:"CreateItemResponse"`
	UpdateItemResp     *updateItemResponse `xml:"UpdateItemResponse"`
	DeleteItemResp     *deleteItemResponse `xml:"DeleteItemResponse"`
	FindFolderResp     *findFolderResponse `xml:"FindFolderResponse"`
	AvailabilityResp   *availabilityResponse `xml:"GetUserAvailabilityResponse"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type responseMessage struct {
	ResponseClass string `xml:"ResponseClass,attr"`
	ResponseCode  string `xml:"ResponseCode"`
	MessageText   string `xml:"MessageText"`
}

type itemID struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr"`
}

type mailbox struct {
	Name         string `xml:"Name"`
	EmailAddress string `xml:"EmailAddress"`
}

type attendeeItem struct {
	Mailbox      mailbox `xml:"Mailbox"`
	ResponseType string  `xml:"ResponseType"`
}

type calendarItem struct {
	ItemID           itemID  `xml:"ItemId"`
	Subject          string  `xml:"Subject"`
	Body             string  `xml:"Body"`
	Start            string  `xml:"Start"`
	End              string  `xml:"End"`
	IsAllDayEvent    bool    `xml:"IsAllDayEvent"`
	LegacyFreeBusy   string  `xml:"LegacyFreeBusyStatus"`
	Location         string  `xml:"Location"`
	Sensitivity      string  `xml:"Sensitivity"`
	IsCancelled      bool    `xml:"IsCancelled"`
	IsRecurring      bool    `xml:"IsRecurring"`
	CalendarItemType string  `xml:"CalendarItemType"`
	UID              string  `xml:"UID"`
	Organizer        *struct {
		Mailbox mailbox `xml:"Mailbox"`
	} `xml:"Organizer"`
	RequiredAttendees *struct {
		Attendee []attendeeItem `xml:"Attendee"`
	} `xml:"RequiredAttendees"`
	OptionalAttendees *struct {
		Attendee []attendeeItem `xml:"Attendee"`
	} `xml:"OptionalAttendees"`
	MyResponseType string `xml:"MyResponseType"`
}

type findItemResponse struct {
	ResponseMessages struct {
		FindItemResponseMessage []struct {
			responseMessage
			RootFolder struct {
				Items struct {
					CalendarItem []calendarItem `xml:"CalendarItem"`
				} `xml:"Items"`
			} `xml:"RootFolder"`
		} `xml:"FindItemResponseMessage"`
	} `xml:"ResponseMessages"`
}

type getItemResponse struct {
	ResponseMessages struct {
		GetItemResponseMessage []struct {
			responseMessage
			Items struct {
				CalendarItem []calendarItem `xml:"CalendarItem"`
			} `xml:"Items"`
		} `xml:"GetItemResponseMessage"`
	} `xml:"ResponseMessages"`
}

type createItemResponse struct {
	ResponseMessages struct {
		CreateItemResponseMessage []struct {
			responseMessage
			Items struct {
				CalendarItem []calendarItem `xml:"CalendarItem"`
			} `xml:"Items"`
		} `xml:"CreateItemResponseMessage"`
	} `xml:"ResponseMessages"`
}

type updateItemResponse struct {
	ResponseMessages struct {
		UpdateItemResponseMessage []struct {
			responseMessage
			Items struct {
				CalendarItem []calendarItem `xml:"CalendarItem"`
			} `xml:"Items"`
		} `xml:"UpdateItemResponseMessage"`
	} `xml:"ResponseMessages"`
}

type deleteItemResponse struct {
	ResponseMessages struct {
		DeleteItemResponseMessage []responseMessage `xml:"DeleteItemResponseMessage"`
	} `xml:"ResponseMessages"`
}

type folderEntry struct {
	FolderID    itemID `xml:"FolderId"`
	DisplayName string `xml:"DisplayName"`
}

type findFolderResponse struct {
	ResponseMessages struct {
		FindFolderResponseMessage []struct {
			responseMessage
			RootFolder struct {
				Folders struct {
					CalendarFolder []folderEntry `xml:"CalendarFolder"`
				} `xml:"Folders"`
			} `xml:"RootFolder"`
		} `xml:"FindFolderResponseMessage"`
	} `xml:"ResponseMessages"`
}

type calendarEventDetails struct {
	Subject string `xml:"Subject"`
	ID      string `xml:"ID"`
}

type availabilityEvent struct {
	StartTime  string                `xml:"StartTime"`
	EndTime    string                `xml:"EndTime"`
	BusyType   string                `xml:"BusyType"`
	Details    *calendarEventDetails `xml:"CalendarEventDetails"`
}

type availabilityResponse struct {
	FreeBusyResponseArray struct {
		FreeBusyResponse []struct {
			ResponseMessage responseMessage `xml:"ResponseMessage"`
			FreeBusyView    struct {
				CalendarEventArray struct {
					CalendarEvent []availabilityEvent `xml:"CalendarEvent"`
				} `xml:"CalendarEventArray"`
			} `xml:"FreeBusyView"`
		} `xml:"FreeBusyResponse"`
	} `xml:"FreeBusyResponseArray"`
}
