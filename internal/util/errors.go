package util

import "errors"

// 错误类别，service 层返回的错误均可用 errors.Is 归类
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
)

// AppError 带类别的业务错误，Error() 只返回面向用户的描述
type AppError struct {
	Kind error
	Msg  string
}

func (e *AppError) Error() string { return e.Msg }

func (e *AppError) Unwrap() error { return e.Kind }

func NewError(kind error, msg string) error {
	return &AppError{Kind: kind, Msg: msg}
}

func NotFoundError(msg string) error        { return NewError(ErrNotFound, msg) }
func ConflictError(msg string) error        { return NewError(ErrConflict, msg) }
func ForbiddenError(msg string) error       { return NewError(ErrForbidden, msg) }
func InvalidArgumentError(msg string) error { return NewError(ErrInvalidArgument, msg) }

var (
	ErrUserNotFound       = NotFoundError("User not found")
	ErrEventNotFound      = NotFoundError("Event not found")
	ErrGroupNotFound      = NotFoundError("Group not found")
	ErrMemberNotFound     = NotFoundError("Member not found")
	ErrPostNotFound       = NotFoundError("Post not found")
	ErrCommentNotFound    = NotFoundError("Comment not found")
	ErrEmailRegistered    = ConflictError("Email already registered")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid credentials")
	ErrGroupNotOpen       = ConflictError("Group is not accepting new members")
	ErrAlreadyMember      = ConflictError("Already a member of this group")
	ErrGroupFull          = ConflictError("Group is full")
	ErrOwnGroup           = ConflictError("Group creator is already part of the group")
	ErrRejectedWithdraw   = ConflictError("Rejected requests cannot be withdrawn")
	ErrAlreadyReacted     = ConflictError("Reaction already exists")
	ErrInvalidAction      = InvalidArgumentError("Invalid action")
	ErrNotGroupCreator    = ForbiddenError("Only the group creator can manage members")
	ErrNotOwner           = ForbiddenError("Only the creator or an admin can modify this resource")
	ErrAdminRequired      = ForbiddenError("Admin access required")
	ErrIdentityMismatch   = ForbiddenError("Request user does not match the authenticated user")
)
