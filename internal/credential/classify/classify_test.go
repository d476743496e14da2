package classify

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"credwallet/internal/credential/models"
)

// =============================================================================
// Credential Classifier Test Suite
// =============================================================================
// Justification: the variant decides which card the holder sees before and
// after attributes resolve. Both passes must agree on the same snapshot.

type ClassifySuite struct {
	suite.Suite
}

func TestClassifySuite(t *testing.T) {
	suite.Run(t, new(ClassifySuite))
}

func attrs(pairs ...string) []models.Attribute {
	out := make([]models.Attribute, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Attribute{Name: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func (s *ClassifySuite) TestTranscriptRule() {
	cases := []struct {
		name     string
		snapshot models.AttributeSnapshot
	}{
		{"term gpa", models.AttributeSnapshot{Attributes: attrs("termGPA", "3.8")}},
		{"cumulative gpa", models.AttributeSnapshot{Attributes: attrs("cumulativeGpa", "3.5")}},
		{"snake case gpa", models.AttributeSnapshot{Attributes: attrs("term_gpa", "3.1")}},
		{"bare gpa", models.AttributeSnapshot{Attributes: attrs("GPA", "4.0")}},
		{"year start", models.AttributeSnapshot{Attributes: attrs("yearStart", "2021")}},
		{"year start snake", models.AttributeSnapshot{Attributes: attrs("Year_Start", "2021")}},
		{"cred def id", models.AttributeSnapshot{CredentialDefinitionID: "Th7:3:CL:12:HighSchoolTranscript"}},
		{"schema id", models.AttributeSnapshot{SchemaID: "Th7:2:TRANSCRIPT:1.0"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(models.VariantTranscript, Classify(tc.snapshot))
		})
	}
}

func (s *ClassifySuite) TestGPAOutranksStudentID() {
	snapshot := models.AttributeSnapshot{
		Attributes:             attrs("studentId", "123", "fullName", "Ann Lee", "termGPA", "3.8"),
		CredentialDefinitionID: "Th7:3:CL:12:NHCS",
	}
	s.Equal(models.VariantTranscript, Classify(snapshot))
}

func (s *ClassifySuite) TestStudentIDRule() {
	s.Run("student id and full name with unrelated schema", func() {
		snapshot := models.AttributeSnapshot{
			Attributes: attrs("studentId", "123", "fullName", "Ann Lee"),
			SchemaID:   "X",
		}
		s.Equal(models.VariantStudentID, Classify(snapshot))
	})

	s.Run("student number and last name", func() {
		snapshot := models.AttributeSnapshot{Attributes: attrs("StudentNumber", "9", "last", "Lee")}
		s.Equal(models.VariantStudentID, Classify(snapshot))
	})

	s.Run("student id alone is not enough", func() {
		snapshot := models.AttributeSnapshot{Attributes: attrs("student_id", "9")}
		s.Equal(models.VariantDefault, Classify(snapshot))
	})

	s.Run("name alone is not enough", func() {
		snapshot := models.AttributeSnapshot{Attributes: attrs("fullname", "Ann Lee")}
		s.Equal(models.VariantDefault, Classify(snapshot))
	})
}

func (s *ClassifySuite) TestIssuerMarkers() {
	s.Run("default markers", func() {
		for _, marker := range DefaultIssuerMarkers {
			snapshot := models.AttributeSnapshot{CredentialDefinitionID: "Th7:3:CL:12:" + marker + "-ID"}
			s.Equal(models.VariantStudentID, Classify(snapshot), marker)
		}
	})

	s.Run("markers are case sensitive", func() {
		snapshot := models.AttributeSnapshot{CredentialDefinitionID: "Th7:3:CL:12:nhcs"}
		s.Equal(models.VariantDefault, Classify(snapshot))
	})

	s.Run("markers are not read from the schema id", func() {
		snapshot := models.AttributeSnapshot{SchemaID: "Th7:2:Miami:1.0"}
		s.Equal(models.VariantDefault, Classify(snapshot))
	})

	s.Run("custom allow-list replaces the default", func() {
		c := New("ACME")
		s.Equal(models.VariantStudentID, c.Classify(models.AttributeSnapshot{CredentialDefinitionID: "x:ACME:y"}))
		s.Equal(models.VariantDefault, c.Classify(models.AttributeSnapshot{CredentialDefinitionID: "x:NHCS:y"}))
	})

	s.Run("custom allow-list is copied", func() {
		markers := []string{"ACME"}
		c := New(markers...)
		markers[0] = "OTHER"
		s.Equal(models.VariantStudentID, c.Classify(models.AttributeSnapshot{CredentialDefinitionID: "ACME"}))
	})
}

func (s *ClassifySuite) TestDefault() {
	s.Equal(models.VariantDefault, Classify(models.AttributeSnapshot{}))
	s.Equal(models.VariantDefault, Classify(models.AttributeSnapshot{Attributes: attrs("email", "a@b.c")}))
}

func (s *ClassifySuite) TestIdempotent() {
	snapshots := []models.AttributeSnapshot{
		{},
		{Attributes: attrs("termGPA", "3.8")},
		{Attributes: attrs("studentId", "1", "first", "Ann")},
		{CredentialDefinitionID: "CFCC"},
	}
	for _, snap := range snapshots {
		s.Equal(Classify(snap), Classify(snap))
	}
}
