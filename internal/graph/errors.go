package graph

import "errors"

var (
	ErrNoDocument        = errors.New("no document loaded")
	ErrUnknownNode       = errors.New("unknown node")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSelfConnection    = errors.New("a node cannot connect to itself")
)
