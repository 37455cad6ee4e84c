package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"
)

var (
	oidCommonName         = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidOrganization       = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidOrganizationalUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
	oidLocality           = asn1.ObjectIdentifier{2, 5, 4, 7}
	oidProvince           = asn1.ObjectIdentifier{2, 5, 4, 8}
	oidCountry            = asn1.ObjectIdentifier{2, 5, 4, 6}
)

type Subject struct {
	CommonName         string
	Organization       string
	OrganizationalUnit string
	Locality           string
	Province           string
	Country            string
}

func (s Subject) Validate() error {
	if strings.TrimSpace(s.CommonName) == "" {
		return fmt.Errorf("common name is required")
	}
	if len(s.CommonName) > 64 {
		return fmt.Errorf("common name too long")
	}
	return nil
}

// ToRDNSequence encodes attributes in the fixed order CN, O, OU, L, ST, C;
// pkix.Name's default marshaling would reorder them.
func (s Subject) ToRDNSequence() pkix.RDNSequence {
	var seq pkix.RDNSequence
	for _, attr := range s.orderedAttributes() {
		seq = append(seq, []pkix.AttributeTypeAndValue{{
			Type:  attr.oid,
			Value: attr.value,
		}})
	}
	return seq
}

func (s Subject) String() string {
	parts := make([]string, 0, 6)
	for _, attr := range s.orderedAttributes() {
		parts = append(parts, attr.name+"="+attr.value)
	}
	return strings.Join(parts, ", ")
}

type subjectAttribute struct {
	name  string
	oid   asn1.ObjectIdentifier
	value string
}

func (s Subject) orderedAttributes() []subjectAttribute {
	all := []subjectAttribute{
		{"CN", oidCommonName, s.CommonName},
		{"O", oidOrganization, s.Organization},
		{"OU", oidOrganizationalUnit, s.OrganizationalUnit},
		{"L", oidLocality, s.Locality},
		{"ST", oidProvince, s.Province},
		{"C", oidCountry, s.Country},
	}

	present := make([]subjectAttribute, 0, len(all))
	for _, attr := range all {
		if attr.value != "" {
			present = append(present, attr)
		}
	}
	return present
}

// FormatName renders a parsed pkix.Name in the same fixed order used
// when encoding.
func FormatName(name pkix.Name) string {
	subject := Subject{
		CommonName: name.CommonName,
	}
	if len(name.Organization) > 0 {
		subject.Organization = name.Organization[0]
	}
	if len(name.OrganizationalUnit) > 0 {
		subject.OrganizationalUnit = name.OrganizationalUnit[0]
	}
	if len(name.Locality) > 0 {
		subject.Locality = name.Locality[0]
	}
	if len(name.Province) > 0 {
		subject.Province = name.Province[0]
	}
	if len(name.Country) > 0 {
		subject.Country = name.Country[0]
	}
	return subject.String()
}
