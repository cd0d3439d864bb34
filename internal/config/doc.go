// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package config loads ingestor configuration with Koanf v2.

Sources are layered, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/aisfleet/config.yaml
 3. Environment variables, mapped explicitly in envMappings

# Required

	AISSTREAM_KEY   feed credential
	DUCKDB_PATH     store location (has a default)

At least one of BBOX_JSON or FLEET_MMSIS must be set, otherwise the
subscription mode resolves to error and Load fails.

# Subscription

	FLEET_MMSIS        comma-separated allowlist: 211234560,244650000
	BBOX_JSON          ';'-separated boxes: [[4.0,51.8],[4.6,52.1]];[[-0.5,51.3],[0.3,51.7]]
	SUBSCRIPTION_MODE  auto (default), bbox, id-list
	ALLOW_NON_LISTED   store vessels outside FLEET_MMSIS in bbox mode (default false)

Bounding box mode with an empty allowlist requires ALLOW_NON_LISTED=true,
since otherwise nothing would ever be stored.

# Example YAML

	stream:
	  api_key: "..."
	subscription:
	  bounding_boxes: "[[4.0,51.8],[4.6,52.1]]"
	  mmsis: ["211234560", "244650000"]
	database:
	  path: /var/lib/aisfleet/aisfleet.duckdb
	maintenance:
	  retention_enabled: true
	  retention_days: 90
*/
package config
