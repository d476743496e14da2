// Package classify picks the display variant of a credential from its
// attribute snapshot. Classification is pure and total: the same snapshot
// always yields the same variant, and unknown shapes fall through to Default.
package classify

import (
	"slices"
	"strings"

	"credwallet/internal/credential/models"
)

// DefaultIssuerMarkers are credential-definition id fragments of issuers
// whose credentials render as student ids.
var DefaultIssuerMarkers = []string{"NHCS", "PCS", "M-DCPS", "CFCC", "Pender", "Miami", "Hanover"}

var (
	yearStartNames = []string{"yearstart", "year_start"}
	studentIDNames = []string{"studentid", "studentnumber", "student_id"}
	nameNames      = []string{"fullname", "studentfullname", "first", "last"}
)

const (
	gpaMarker        = "gpa"
	transcriptMarker = "transcript"
)

// Classifier applies the variant rules with a configurable issuer allow-list.
type Classifier struct {
	markers []string
}

// New returns a classifier matching the given issuer markers
// (case-sensitive). With no markers it uses DefaultIssuerMarkers.
func New(markers ...string) *Classifier {
	if len(markers) == 0 {
		markers = DefaultIssuerMarkers
	}
	return &Classifier{markers: slices.Clone(markers)}
}

var defaultClassifier = New()

// Classify uses the default issuer markers.
func Classify(snapshot models.AttributeSnapshot) models.DisplayVariant {
	return defaultClassifier.Classify(snapshot)
}

// Classify returns the first matching variant:
//  1. a GPA-like or year-start attribute, or "transcript" in the credential
//     definition or schema id, yields Transcript;
//  2. a student-id attribute together with a name attribute yields StudentID;
//  3. an issuer marker in the credential definition id yields StudentID;
//  4. otherwise Default.
func (c *Classifier) Classify(snapshot models.AttributeSnapshot) models.DisplayVariant {
	if IsTranscript(snapshot) {
		return models.VariantTranscript
	}
	if hasAny(snapshot.Attributes, studentIDNames) && hasAny(snapshot.Attributes, nameNames) {
		return models.VariantStudentID
	}
	for _, m := range c.markers {
		if m != "" && strings.Contains(snapshot.CredentialDefinitionID, m) {
			return models.VariantStudentID
		}
	}
	return models.VariantDefault
}

// IsTranscript reports whether the transcript rule matches.
func IsTranscript(snapshot models.AttributeSnapshot) bool {
	for _, a := range snapshot.Attributes {
		name := strings.ToLower(a.Name)
		if strings.Contains(name, gpaMarker) || slices.Contains(yearStartNames, name) {
			return true
		}
	}
	return containsFold(snapshot.CredentialDefinitionID, transcriptMarker) ||
		containsFold(snapshot.SchemaID, transcriptMarker)
}

func hasAny(attrs []models.Attribute, names []string) bool {
	for _, a := range attrs {
		if slices.Contains(names, strings.ToLower(a.Name)) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
