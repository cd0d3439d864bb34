// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package logging provides the process-wide zerolog logger for the ingestor.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("mode", "bbox").Msg("Subscription resolved")
	logging.Err(err).Int64("mmsi", mmsi).Msg("Position insert failed")

Per-connection logging carries a short connection ID so that every line
produced while one upstream socket is alive can be grepped together:

	ctx = logging.ContextWithConnectionID(ctx, logging.GenerateConnectionID())
	logging.Ctx(ctx).Info().Msg("Connected")

# Configuration

	LOG_LEVEL   trace, debug, info, warn, error (default: info)
	LOG_FORMAT  json, console (default: json)
	LOG_CALLER  include caller file:line (default: false)

# Libraries using slog

Suture and watermill log through *slog.Logger. NewSlogLogger returns one
that writes through zerolog:

	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()

# Noisy sites

Per-record drop messages are debug level and go through a Sampler so a
misbehaving feed cannot flood the output.
*/
package logging
