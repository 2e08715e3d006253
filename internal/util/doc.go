// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the transcript exporters, the
// config layer and the terminal renderer: crash-safe file writes and
// display-width aware string truncation.
package util
