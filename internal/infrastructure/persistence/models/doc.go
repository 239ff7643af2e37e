// Package models holds the GORM persistence models. Domain types never carry
// gorm tags; every repository converts through ToDomain and FromDomain.
package models
