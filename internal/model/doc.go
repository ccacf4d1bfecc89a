package model

// Package model defines domain data structures used across the app: format
// descriptors, resolution sets, acquisition jobs with their state machine,
// download requests and the error taxonomy shared by probe, planner and
// converter.
