package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

const jsonRPCVersion = "2.0"

// Method names and error codes of the mobile wallet adapter protocol.
const (
	methodAuthorize               = "authorize"
	methodReauthorize             = "reauthorize"
	methodDeauthorize             = "deauthorize"
	methodSignAndSendTransactions = "sign_and_send_transactions"
)

const (
	ErrorAuthorizationFailed = -1
	ErrorInvalidPayloads     = -2
	ErrorNotSigned           = -3
	ErrorNotSubmitted        = -4
	ErrorTooManyPayloads     = -5
)

const signatureLength = 64

// ErrDeclined matches every error the wallet returns because the user or the
// wallet refused the request.
var ErrDeclined = errors.New("wallet declined the request")

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Is(target error) bool {
	return target == ErrDeclined && (e.Code == ErrorAuthorizationFailed || e.Code == ErrorNotSigned)
}

type identityParams struct {
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
	Icon string `json:"icon,omitempty"`
}

type authorizeParams struct {
	Identity identityParams `json:"identity"`
	Cluster  string         `json:"cluster"`
}

type reauthorizeParams struct {
	Identity  identityParams `json:"identity"`
	AuthToken string         `json:"auth_token"`
}

type deauthorizeParams struct {
	AuthToken string `json:"auth_token"`
}

type authorizationResult struct {
	AuthToken string `json:"auth_token"`
	Accounts  []struct {
		Address string `json:"address"`
		Label   string `json:"label,omitempty"`
	} `json:"accounts"`
	WalletURIBase string `json:"wallet_uri_base,omitempty"`
}

type signAndSendParams struct {
	Payloads []string `json:"payloads"`
}

type signAndSendResult struct {
	Signatures []string `json:"signatures"`
}
