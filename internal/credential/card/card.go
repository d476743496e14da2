// Package card composes reconciliation, attribute resolution and
// classification into the credential card shown to the holder.
package card

import (
	"context"
	"errors"
	"strings"

	"credwallet/internal/credential/classify"
	"credwallet/internal/credential/lifecycle"
	"credwallet/internal/credential/models"
	"credwallet/internal/credential/resolver"
)

// Layout is the card template the shell draws.
type Layout string

const (
	LayoutLoading    Layout = "loading"
	LayoutStudentID  Layout = "student_id"
	LayoutTranscript Layout = "transcript"
	LayoutDefault    Layout = "default"
)

// Notice is the banner shown under a decided card.
type Notice string

const (
	NoticeNone     Notice = ""
	NoticeAccepted Notice = "accepted"
	NoticeDeclined Notice = "declined"
)

const defaultCardAttributes = 4

// Field names populated from attribute aliases.
const (
	FieldFirst         = "first"
	FieldLast          = "last"
	FieldFullName      = "fullName"
	FieldStudentID     = "studentId"
	FieldSchool        = "school"
	FieldIssueDate     = "issueDate"
	FieldPhoto         = "photo"
	FieldYearStart     = "yearStart"
	FieldYearEnd       = "yearEnd"
	FieldTermGPA       = "termGPA"
	FieldCumulativeGPA = "cumulativeGPA"
)

var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{FieldFirst, []string{"first", "firstname", "first_name"}},
	{FieldLast, []string{"last", "lastname", "last_name"}},
	{FieldFullName, []string{"fullname", "studentfullname", "full_name"}},
	{FieldStudentID, []string{"studentid", "studentnumber", "student_id"}},
	{FieldSchool, []string{"schoolname", "school", "institution"}},
	{FieldIssueDate, []string{"issuedate", "issue_date", "expirationdate", "expiration_date"}},
	{FieldPhoto, []string{"studentphoto", "photo", "student_photo"}},
	{FieldYearStart, []string{"yearstart", "year_start"}},
	{FieldYearEnd, []string{"yearend", "year_end"}},
	{FieldTermGPA, []string{"termgpa", "term_gpa"}},
	{FieldCumulativeGPA, []string{"cumulativegpa", "cumulative_gpa"}},
}

var photoNames = []string{"studentphoto", "photo", "student_photo"}

// Card is the presentation of one credential.
type Card struct {
	CredentialID           string                `json:"credential_id"`
	Variant                models.DisplayVariant `json:"variant"`
	Layout                 Layout                `json:"layout"`
	Loading                bool                  `json:"loading"`
	Phase                  models.Phase          `json:"phase"`
	Decision               models.DecisionState  `json:"decision"`
	ShowActions            bool                  `json:"show_actions"`
	Disabled               bool                  `json:"disabled"`
	Notice                 Notice                `json:"notice,omitempty"`
	CredentialDefinitionID string                `json:"credential_definition_id,omitempty"`
	DisplayName            string                `json:"display_name,omitempty"`
	Fields                 map[string]string     `json:"fields,omitempty"`

	// Attributes lists up to four non-photo attributes for the default layout.
	Attributes []models.Attribute `json:"attributes,omitempty"`
}

// Presenter builds cards.
type Presenter struct {
	lifecycle  *lifecycle.Controller
	resolver   *resolver.Resolver
	classifier *classify.Classifier
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithClassifier replaces the default classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Presenter) {
		p.classifier = c
	}
}

// NewPresenter creates a Presenter.
func NewPresenter(lc *lifecycle.Controller, res *resolver.Resolver, opts ...Option) (*Presenter, error) {
	if lc == nil {
		return nil, errors.New("lifecycle controller is required")
	}
	if res == nil {
		return nil, errors.New("resolver is required")
	}
	p := &Presenter{lifecycle: lc, resolver: res, classifier: classify.New()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Present reconciles record and returns its card without waiting for
// attribute resolution. A card still resolving reports Loading.
func (p *Presenter) Present(ctx context.Context, record models.CredentialRecord) Card {
	st := p.lifecycle.Reconcile(ctx, record)
	return p.build(record, st, p.resolver.Resolve(ctx, record))
}

// PresentResolved is Present but waits for attribute resolution.
func (p *Presenter) PresentResolved(ctx context.Context, record models.CredentialRecord) (Card, error) {
	st := p.lifecycle.Reconcile(ctx, record)
	res, err := p.resolver.Await(ctx, record)
	if err != nil {
		return Card{}, err
	}
	return p.build(record, st, res), nil
}

func (p *Presenter) build(record models.CredentialRecord, st lifecycle.Status, res resolver.Resolution) Card {
	c := Card{
		CredentialID: record.ID,
		Phase:        st.Phase,
		Decision:     st.Decision,
	}

	declined := st.Decision == models.DecisionDeclined
	accepted := st.Decision == models.DecisionAccepted
	c.ShowActions = record.State == models.StateOfferReceived && st.Decision == models.DecisionNone
	c.Disabled = declined
	switch {
	case declined:
		c.Notice = NoticeDeclined
	case accepted:
		c.Notice = NoticeAccepted
	}

	if res.Loading && !declined {
		c.Loading = true
		c.Layout = LayoutLoading
		c.Variant = p.classifier.Classify(preResolution(record))
		return c
	}

	snapshot := res.Snapshot
	if declined && st.DeclinedSnapshot != nil {
		snapshot = *st.DeclinedSnapshot
		if snapshot.CredentialDefinitionID == "" {
			snapshot.CredentialDefinitionID = res.Snapshot.CredentialDefinitionID
		}
	}

	c.Variant = p.classifier.Classify(snapshot)
	c.CredentialDefinitionID = snapshot.CredentialDefinitionID
	c.Fields = fields(snapshot.Attributes)
	c.DisplayName = displayName(c.Fields)
	c.Layout = layout(c.Variant, c.Fields)
	if c.Layout == LayoutDefault {
		c.Attributes = summary(snapshot.Attributes)
	}
	return c
}

func preResolution(record models.CredentialRecord) models.AttributeSnapshot {
	ac := record.AnonCreds()
	return models.AttributeSnapshot{
		Attributes:             record.Attributes,
		CredentialDefinitionID: ac.CredentialDefinitionID,
		SchemaID:               ac.SchemaID,
	}
}

// layout is the same for pending and declined cards, so a declined offer keeps
// the look it had when the holder declined it.
func layout(variant models.DisplayVariant, f map[string]string) Layout {
	if f[FieldStudentID] != "" && (f[FieldFirst] != "" || f[FieldLast] != "" || f[FieldFullName] != "") {
		return LayoutStudentID
	}
	switch variant {
	case models.VariantStudentID:
		return LayoutStudentID
	case models.VariantTranscript:
		return LayoutTranscript
	}
	return LayoutDefault
}

func fields(attrs []models.Attribute) map[string]string {
	out := make(map[string]string)
	for _, fa := range fieldAliases {
		if v, ok := models.FindAttribute(attrs, fa.aliases...); ok {
			out[fa.field] = v
		}
	}
	return out
}

func displayName(f map[string]string) string {
	if f[FieldFullName] != "" {
		return f[FieldFullName]
	}
	return strings.TrimSpace(f[FieldFirst] + " " + f[FieldLast])
}

func summary(attrs []models.Attribute) []models.Attribute {
	out := make([]models.Attribute, 0, defaultCardAttributes)
	for _, a := range attrs {
		if len(out) == defaultCardAttributes {
			break
		}
		if isPhoto(a.Name) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func isPhoto(name string) bool {
	for _, p := range photoNames {
		if strings.EqualFold(name, p) {
			return true
		}
	}
	return false
}
