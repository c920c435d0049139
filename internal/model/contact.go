package model

import "time"

// Contact represents a row in the `contacts` table. Every contact belongs
// to exactly one account via AccountID; the schema declares the foreign
// key with ON DELETE CASCADE so removing an account removes its contacts.
// All repository queries are keyed by AccountID, which is what makes
// cross-account access unreachable.
//
// Fields:
//  ID          – primary key identifier of the contact.
//  AccountID   – owning account (contacts.account_id).
//  FirstName   – given name.
//  LastName    – family name.
//  Email       – contact's email address.
//  Phone       – phone number.
//  BirthDate   – date of birth (DATE column, midnight UTC).
//  Description – optional free-text note.
type Contact struct {
	ID          uint64    // contacts.id
	AccountID   uint64    // contacts.account_id
	FirstName   string    // contacts.first_name
	LastName    string    // contacts.last_name
	Email       string    // contacts.email
	Phone       string    // contacts.phone
	BirthDate   time.Time // contacts.birth_date
	Description string    // contacts.description
}
