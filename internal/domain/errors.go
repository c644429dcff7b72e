package domain

import "errors"

var (
	ErrInvalidAddress        = errors.New("invalid account address")
	ErrNoAccounts            = errors.New("wallet returned no accounts")
	ErrAccountNotAuthorized  = errors.New("account is no longer authorized")
	ErrNotAuthorized         = errors.New("no active wallet authorization")
	ErrAuthorizationNotFound = errors.New("authorization not found")
	ErrSecretNotFound        = errors.New("secret not found")
	ErrUnsupportedCluster    = errors.New("unsupported cluster")
	ErrProgramNotReady       = errors.New("program context is not resolved")
	ErrSubmissionInProgress  = errors.New("a counter transaction is already in flight")
	ErrAirdropFailed         = errors.New("airdrop request failed")
	ErrCounterDecode         = errors.New("decode counter account")
	ErrAccountNotFound       = errors.New("account not found")
	ErrUnknownMethod         = errors.New("unknown counter method")
)
