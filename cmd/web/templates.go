package main

import (
	"github.com/myrjola/casefile/internal/contexthelpers"
	"github.com/myrjola/casefile/internal/models"
	"net/http"
)

type navItem struct {
	Label  string
	Path   string
	Active bool
}

type BaseTemplateData struct {
	Theme       models.Theme
	CurrentPath string
	Nav         []navItem
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	currentPath := contexthelpers.CurrentPath(ctx)
	nav := []navItem{
		{Label: "Research", Path: "/", Active: false},
		{Label: "Script", Path: "/script", Active: false},
		{Label: "Footage", Path: "/footage", Active: false},
		{Label: "Transcribe", Path: "/transcribe", Active: false},
		{Label: "Archive", Path: "/archive", Active: false},
	}
	for i := range nav {
		nav[i].Active = nav[i].Path == currentPath
	}
	return BaseTemplateData{
		Theme:       contexthelpers.Theme(ctx),
		CurrentPath: currentPath,
		Nav:         nav,
	}
}
