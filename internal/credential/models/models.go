// Package models defines the credential records exchanged with the agent and
// the presentation state derived from them.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CredentialState is the credential-exchange protocol state of a record.
type CredentialState string

const (
	StateProposalSent       CredentialState = "proposal-sent"
	StateProposalReceived   CredentialState = "proposal-received"
	StateOfferSent          CredentialState = "offer-sent"
	StateOfferReceived      CredentialState = "offer-received"
	StateDeclined           CredentialState = "declined"
	StateRequestSent        CredentialState = "request-sent"
	StateRequestReceived    CredentialState = "request-received"
	StateCredentialIssued   CredentialState = "credential-issued"
	StateCredentialReceived CredentialState = "credential-received"
	StateDone               CredentialState = "done"
	StateAbandoned          CredentialState = "abandoned"
)

// Metadata keys written on decline and read during reconciliation.
const (
	MetaOfferPreview = "offerPreview"
	MetaCredDefID    = "credDefId"
	MetaSchemaID     = "schemaId"

	// MetaAnonCredsCredential holds the ids recorded by the agent when the
	// offer was received.
	MetaAnonCredsCredential = "_anoncreds/credential"
)

// Attribute is one name/value claim.
type Attribute struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	MimeType string `json:"mime-type,omitempty"`
}

// FindAttribute returns the first non-empty value whose name matches any of
// names, case-insensitively. Names are tried in order.
func FindAttribute(attrs []Attribute, names ...string) (string, bool) {
	for _, name := range names {
		for _, a := range attrs {
			if strings.EqualFold(a.Name, name) && a.Value != "" {
				return a.Value, true
			}
		}
	}
	return "", false
}

// Metadata is the per-record key/value store persisted by the agent. Values
// are kept as JSON.
type Metadata map[string]json.RawMessage

// Get decodes the value under key into dst. ok is false when the key is absent.
func (m Metadata) Get(key string, dst any) (ok bool, err error) {
	raw, found := m[key]
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("metadata %q: %w", key, err)
	}
	return true, nil
}

// Set encodes v under key.
func (m Metadata) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("metadata %q: %w", key, err)
	}
	m[key] = raw
	return nil
}

// AnonCredsCredential is the value stored under MetaAnonCredsCredential.
type AnonCredsCredential struct {
	CredentialDefinitionID string `json:"credentialDefinitionId,omitempty"`
	SchemaID               string `json:"schemaId,omitempty"`
}

// CredentialRecord is the agent's view of one credential exchange.
type CredentialRecord struct {
	ID           string          `json:"id"`
	State        CredentialState `json:"state"`
	ThreadID     string          `json:"threadId"`
	ConnectionID string          `json:"connectionId,omitempty"`
	Attributes   []Attribute     `json:"credentialAttributes,omitempty"`
	Metadata     Metadata        `json:"metadata,omitempty"`
}

// Clone returns a deep copy so callers can mutate metadata without racing the
// store.
func (r CredentialRecord) Clone() CredentialRecord {
	out := r
	out.Attributes = append([]Attribute(nil), r.Attributes...)
	if r.Metadata != nil {
		out.Metadata = make(Metadata, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// EnsureMetadata allocates the metadata map if needed.
func (r *CredentialRecord) EnsureMetadata() Metadata {
	if r.Metadata == nil {
		r.Metadata = make(Metadata)
	}
	return r.Metadata
}

// AnonCreds returns the ids the agent recorded for the offer, if any.
func (r CredentialRecord) AnonCreds() AnonCredsCredential {
	var ac AnonCredsCredential
	_, _ = r.Metadata.Get(MetaAnonCredsCredential, &ac)
	return ac
}

// OfferFormat is the anoncreds/indy offer body.
type OfferFormat struct {
	CredDefID string `json:"cred_def_id,omitempty"`
	SchemaID  string `json:"schema_id,omitempty"`
}

// Offer carries the offer in whichever formats the issuer used.
type Offer struct {
	AnonCreds *OfferFormat `json:"anoncreds,omitempty"`
	Indy      *OfferFormat `json:"indy,omitempty"`
}

// FormatData is the live offer data attached to a record. It is cleared once
// the offer is declined.
type FormatData struct {
	OfferAttributes []Attribute `json:"offerAttributes,omitempty"`
	Offer           *Offer      `json:"offer,omitempty"`
}

// CredDefID returns the first non-empty credential definition id of the
// anoncreds then indy formats.
func (f FormatData) CredDefID() string {
	if f.Offer == nil {
		return ""
	}
	for _, of := range []*OfferFormat{f.Offer.AnonCreds, f.Offer.Indy} {
		if of != nil && of.CredDefID != "" {
			return of.CredDefID
		}
	}
	return ""
}

// SchemaID returns the first non-empty schema id of the anoncreds then indy
// formats.
func (f FormatData) SchemaID() string {
	if f.Offer == nil {
		return ""
	}
	for _, of := range []*OfferFormat{f.Offer.AnonCreds, f.Offer.Indy} {
		if of != nil && of.SchemaID != "" {
			return of.SchemaID
		}
	}
	return ""
}

// Connection is the minimal connection record needed to address the
// counterparty.
type Connection struct {
	ID         string `json:"id"`
	TheirLabel string `json:"theirLabel,omitempty"`
}

// AttributeSnapshot is the input to classification and card rendering.
type AttributeSnapshot struct {
	Attributes             []Attribute `json:"attributes"`
	CredentialDefinitionID string      `json:"credentialDefinitionId,omitempty"`
	SchemaID               string      `json:"schemaId,omitempty"`
}

// Empty reports whether the snapshot carries no attributes.
func (s AttributeSnapshot) Empty() bool {
	return len(s.Attributes) == 0
}

// DisplayVariant selects the card template.
type DisplayVariant string

const (
	VariantStudentID  DisplayVariant = "student_id"
	VariantTranscript DisplayVariant = "transcript"
	VariantDefault    DisplayVariant = "default"
)

// DecisionState is the user's decision on an offer.
type DecisionState string

const (
	DecisionNone     DecisionState = "none"
	DecisionAccepted DecisionState = "accepted"
	DecisionDeclined DecisionState = "declined"
)

// Phase is the lifecycle phase of an offer as presented to the user.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseProcessing Phase = "processing"
	PhaseAccepted   Phase = "accepted"
	PhaseDeclined   Phase = "declined"
)

// ResolutionPhase tracks attribute resolution for one record.
type ResolutionPhase string

const (
	ResolutionUnresolved ResolutionPhase = "unresolved"
	ResolutionResolving  ResolutionPhase = "resolving"
	ResolutionResolved   ResolutionPhase = "resolved"
)
