package web

import "embed"

// StaticFS holds the embedded static assets (widget bootstrap script and stylesheet).
//
//go:embed static/*
var StaticFS embed.FS
