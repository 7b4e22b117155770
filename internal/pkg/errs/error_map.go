/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize error construction and classification across the client.
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and error kind.
var errorMap = map[int]CustomError{
	// 1xxx: Local Validation Errors
	ErrEmptyMessageBody:       {Code: ErrEmptyMessageBody, Kind: KindValidation, Message: "Message cannot be empty."},
	ErrRoomIDRequired:         {Code: ErrRoomIDRequired, Kind: KindValidation, Message: "A conversation must be selected."},
	ErrTokenRequired:          {Code: ErrTokenRequired, Kind: KindValidation, Message: "Please sign in to continue."},
	ErrAttachmentCountInvalid: {Code: ErrAttachmentCountInvalid, Kind: KindValidation, Message: "A message can carry at most %d attachments."},
	ErrAttachmentTypeInvalid:  {Code: ErrAttachmentTypeInvalid, Kind: KindValidation, Message: "This file type is not supported."},
	ErrAttachmentSizeInvalid:  {Code: ErrAttachmentSizeInvalid, Kind: KindValidation, Message: "Attachment is too large."},
	ErrSendInFlight:           {Code: ErrSendInFlight, Kind: KindValidation, Message: "A message is already being sent."},

	// 2xxx: Transport Errors
	ErrConnectFailed:   {Code: ErrConnectFailed, Kind: KindTransport, Message: "Connecting…"},
	ErrAuthFrameFailed: {Code: ErrAuthFrameFailed, Kind: KindTransport, Message: "Connecting…"},

	// 3xxx: Delivery Errors
	ErrSendFailed: {Code: ErrSendFailed, Kind: KindDelivery, Message: "Message could not be sent. Please try again."},

	// 4xxx: Sync Errors
	ErrRoomListFetchFailed:    {Code: ErrRoomListFetchFailed, Kind: KindSync, Message: "Could not load conversations. Please try again."},
	ErrMessageListFetchFailed: {Code: ErrMessageListFetchFailed, Kind: KindSync, Message: "Could not load messages. Please try again."},
	ErrMarkReadFailed:         {Code: ErrMarkReadFailed, Kind: KindSync, Message: "Could not update read status. Please try again."},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong. Please try again."},
}
