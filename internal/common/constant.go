package common

// SessionCookieName is the cookie carrying the signed session credential.
const SessionCookieName = "token"

// DefaultStatusName is the status every new task starts in.
const DefaultStatusName = "New"

// CompletedStatusName marks a task as completed when it is moved into it.
const CompletedStatusName = "Completed"
