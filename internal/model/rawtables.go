package model

// Row is one raw record keyed by column name. Absent columns read as the
// empty string; blank and literal "null" cells are normalized downstream.
type Row map[string]string

// Table is an ordered collection of raw rows. Row order is significant:
// first-match semantics in the combination builder follow it.
type Table []Row

// RawTables holds the seven PBS tables one schedule snapshot is built from.
type RawTables struct {
	Items                       Table
	Indications                 Table
	PrescribingTexts            Table
	ItemPrescribingTexts        Table
	Restrictions                Table
	ItemRestrictions            Table
	RestrictionPrescribingTexts Table
}
