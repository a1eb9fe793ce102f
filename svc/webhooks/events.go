package webhooks

// Event identifies a platform event webhooks can subscribe to.
type Event string

const (
	EventTransferCreated    Event = "transfer.created"
	EventTransferDownloaded Event = "transfer.downloaded"
	EventTransferExpired    Event = "transfer.expired"
	EventTransferDeleted    Event = "transfer.deleted"
	EventFileUploaded       Event = "file.uploaded"
	EventFileDownloaded     Event = "file.downloaded"
)

// EventInfo describes an event for the subscription configuration UI.
type EventInfo struct {
	Event       Event  `json:"event"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var eventCatalog = []EventInfo{
	{EventTransferCreated, "Transfer created", "A new transfer was created and is ready to share."},
	{EventTransferDownloaded, "Transfer downloaded", "A recipient downloaded a transfer."},
	{EventTransferExpired, "Transfer expired", "A transfer passed its expiry date and is no longer available."},
	{EventTransferDeleted, "Transfer deleted", "A transfer was deleted by its owner."},
	{EventFileUploaded, "File uploaded", "A file finished uploading to a transfer."},
	{EventFileDownloaded, "File downloaded", "A single file was downloaded from a transfer."},
}

// Catalog returns all subscribable events with their display metadata.
func Catalog() []EventInfo {
	out := make([]EventInfo, len(eventCatalog))
	copy(out, eventCatalog)
	return out
}

// Valid reports whether the event is one of the enumerated platform events.
func (e Event) Valid() bool {
	for _, info := range eventCatalog {
		if info.Event == e {
			return true
		}
	}
	return false
}
