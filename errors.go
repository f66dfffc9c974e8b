/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	ErrInvalidName      = errors.New("name must not be empty or too long")
	ErrInvalidRoomCode  = errors.New("room code must be 6 digits")
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNotInRoom        = errors.New("not in a room")
	ErrInvalidMove      = errors.New("move must be rock, paper, or scissors")
	ErrAlreadyMoved     = errors.New("move already submitted this round")
	ErrUnknownRoom      = errors.New("room does not exist")
	ErrRoomNotReady     = errors.New("waiting for an opponent")
	ErrRoundNotResolved = errors.New("round has not finished")
	ErrEmptyMessage     = errors.New("message must not be empty")
	ErrNotConnected     = errors.New("connection is not registered")
	ErrBadRequest       = errors.New("malformed message")
)

// errorCode maps an operation error to the code sent to the client.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return "invalid-name"
	case errors.Is(err, ErrInvalidRoomCode):
		return "invalid-room-code"
	case errors.Is(err, ErrRoomFull):
		return "room-full"
	case errors.Is(err, ErrAlreadyInRoom):
		return "already-in-room"
	case errors.Is(err, ErrNotInRoom):
		return "not-in-room"
	case errors.Is(err, ErrInvalidMove):
		return "invalid-move"
	case errors.Is(err, ErrAlreadyMoved):
		return "already-moved"
	case errors.Is(err, ErrUnknownRoom):
		return "unknown-room"
	case errors.Is(err, ErrRoomNotReady):
		return "room-not-ready"
	case errors.Is(err, ErrRoundNotResolved):
		return "round-not-resolved"
	case errors.Is(err, ErrEmptyMessage):
		return "empty-message"
	case errors.Is(err, ErrNotConnected):
		return "not-connected"
	case errors.Is(err, ErrBadRequest):
		return "bad-request"
	}
	return "internal"
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
