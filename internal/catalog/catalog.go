// Package catalog pins the npm package versions forge writes into generated
// manifests.
package catalog

// FallbackVersion is used for any package id the catalog does not know.
const FallbackVersion = "^1.0.0"

// Framework is the base web framework every generated project builds on.
const Framework = "express"

type Entry struct {
	ID       string `json:"id"`
	Version  string `json:"version"`
	Category string `json:"category"`
}

type Dependency struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

var entries = []Entry{
	{ID: "express", Version: "^4.18.2", Category: "framework"},
	{ID: "cors", Version: "^2.8.5", Category: "middleware"},
	{ID: "helmet", Version: "^7.0.0", Category: "middleware"},
	{ID: "morgan", Version: "^1.10.0", Category: "middleware"},
	{ID: "dotenv", Version: "^16.3.1", Category: "config"},
	{ID: "jsonwebtoken", Version: "^9.0.0", Category: "auth"},
	{ID: "bcrypt", Version: "^5.1.0", Category: "auth"},
	{ID: "mongoose", Version: "^7.4.0", Category: "orm"},
	{ID: "sequelize", Version: "^6.32.1", Category: "orm"},
	{ID: "joi", Version: "^17.9.2", Category: "validation"},
	{ID: "nodemailer", Version: "^6.9.4", Category: "mail"},
}

var versions = func() map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.ID] = e.Version
	}
	return m
}()

// VersionOf returns the pinned version for id, or FallbackVersion.
func VersionOf(id string) string {
	if v, ok := versions[id]; ok {
		return v
	}
	return FallbackVersion
}

func IsKnown(id string) bool {
	_, ok := versions[id]
	return ok
}

// Known returns a copy of the catalog table in its declared order.
func Known() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Resolve maps a package selection to versioned dependencies, keeping order
// and duplicates.
func Resolve(ids []string) []Dependency {
	deps := make([]Dependency, 0, len(ids))
	for _, id := range ids {
		deps = append(deps, Dependency{ID: id, Version: VersionOf(id)})
	}
	return deps
}
