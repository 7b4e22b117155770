/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific validation, transport, delivery, and sync
failures so callers can decide whether to surface, absorb, or log them.
*/
package errs

// 1xxx: Local Validation Errors (no network call issued)
const (
	// ErrEmptyMessageBody indicates a send attempt with an empty or whitespace-only body and no attachments.
	ErrEmptyMessageBody = 1101

	// ErrRoomIDRequired indicates a chat operation was attempted without a room identifier.
	ErrRoomIDRequired = 1102

	// ErrTokenRequired indicates a connection or durable call was attempted without a session token.
	ErrTokenRequired = 1103

	// ErrAttachmentCountInvalid indicates the attachment count is outside the allowed range.
	ErrAttachmentCountInvalid = 1104

	// ErrAttachmentTypeInvalid indicates the attachment file name or MIME type is not allowed.
	ErrAttachmentTypeInvalid = 1105

	// ErrAttachmentSizeInvalid indicates the attachment size is zero, negative, or above the limit.
	ErrAttachmentSizeInvalid = 1106

	// ErrSendInFlight indicates a send was attempted while a previous send is still unresolved.
	ErrSendInFlight = 1201
)

// 2xxx: Transport Errors (absorbed into reconnection)
const (
	// ErrConnectFailed indicates the live connection could not be established.
	ErrConnectFailed = 2101

	// ErrAuthFrameFailed indicates the authentication frame could not be written after connecting.
	ErrAuthFrameFailed = 2102
)

// 3xxx: Delivery Errors (durable send failed after optimistic echo)
const (
	// ErrSendFailed indicates the durable message write failed.
	ErrSendFailed = 3101
)

// 4xxx: Sync Errors (room list or read-state operations)
const (
	// ErrRoomListFetchFailed indicates the conversation list could not be fetched.
	ErrRoomListFetchFailed = 4101

	// ErrMessageListFetchFailed indicates the message history for a room could not be fetched.
	ErrMessageListFetchFailed = 4102

	// ErrMarkReadFailed indicates the read-state write for a room failed.
	ErrMarkReadFailed = 4103
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
