// Package user provides the User aggregate: the people who book shipments and
// change their status. Users authenticate with a username and a bcrypt-hashed
// password; admins and superusers carry extra capabilities.
package user
