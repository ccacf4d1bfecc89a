// Package download turns a chosen resolution into a single local media file.
//
// The Planner builds an AcquisitionJob, asks an Engine (yt-dlp) to fetch the
// best video+audio pair at exactly that height and then reconciles whatever
// files the engine wrote into the job's expected input path. Reconcile is a
// pure function; applying its plan is the only place files are renamed,
// merged or removed.
package download
