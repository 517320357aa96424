package sui

import (
	"encoding/json"
	"fmt"

	model "auction-marketplace/internal/models"
)

const jsonRPCVersion = "2.0"

// JSON-RPC method names
const (
	MethodGetObject   = "sui_getObject"
	MethodQueryEvents = "suix_queryEvents"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a JSON-RPC response
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	const baseFormat = "RPC error %v - %s"
	if len(e.Data) > 0 {
		return fmt.Sprintf(baseFormat+": %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf(baseFormat, e.Code, e.Message)
}

// ObjectDataOptions selects what sui_getObject returns
type ObjectDataOptions struct {
	ShowType                bool `json:"showType"`
	ShowOwner               bool `json:"showOwner"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction"`
	ShowDisplay             bool `json:"showDisplay"`
	ShowContent             bool `json:"showContent"`
	ShowBcs                 bool `json:"showBcs"`
	ShowStorageRebate       bool `json:"showStorageRebate"`
}

// DefaultObjectOptions are the options the indexer fetches objects with
var DefaultObjectOptions = ObjectDataOptions{
	ShowType:                true,
	ShowOwner:               true,
	ShowPreviousTransaction: true,
	ShowContent:             true,
	ShowStorageRebate:       true,
}

// ObjectResponse is the result of sui_getObject. Exactly one of Data and Error is set.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

type ObjectData struct {
	ObjectID            string          `json:"objectId"`
	Version             string          `json:"version"`
	Digest              string          `json:"digest"`
	Type                string          `json:"type,omitempty"`
	Owner               json.RawMessage `json:"owner,omitempty"`
	PreviousTransaction string          `json:"previousTransaction,omitempty"`
	StorageRebate       string          `json:"storageRebate,omitempty"`
	Content             *ObjectContent  `json:"content,omitempty"`
}

type ObjectContent struct {
	DataType          string                     `json:"dataType"`
	Type              string                     `json:"type"`
	HasPublicTransfer bool                       `json:"hasPublicTransfer"`
	Fields            map[string]json.RawMessage `json:"fields"`
}

// ObjectError is returned by the node for deleted or unknown objects
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
	Version  string `json:"version,omitempty"`
	Digest   string `json:"digest,omitempty"`
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object %s unavailable: %s", e.ObjectID, e.Code)
}

// MoveModule names a Move module inside a package
type MoveModule struct {
	Package string `json:"package"`
	Module  string `json:"module"`
}

// TypePrefix is the prefix shared by every event type emitted from the module
func (m MoveModule) TypePrefix() string {
	return m.Package + "::" + m.Module
}

// EventFilter is the query argument of suix_queryEvents
type EventFilter struct {
	MoveEventModule *MoveModule `json:"MoveEventModule,omitempty"`
	MoveEventType   string      `json:"MoveEventType,omitempty"`
}

// Event is a ledger event as returned by suix_queryEvents
type Event struct {
	ID                model.EventID   `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson"`
	TimestampMs       string          `json:"timestampMs,omitempty"`
}

// EventPage is one page of suix_queryEvents results
type EventPage struct {
	Data        []Event        `json:"data"`
	NextCursor  *model.EventID `json:"nextCursor"`
	HasNextPage bool           `json:"hasNextPage"`
}
