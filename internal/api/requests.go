// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package api

import (
	"github.com/tomtom215/geopresence/internal/validation"
)

// Client-facing messages. French, matching the historical wire contract;
// existing clients display these strings verbatim.
const (
	msgInvalidBody     = "Corps de requête invalide."
	msgPseudoRequired  = "Pseudo est requis."
	msgSensorRecorded  = "Données du capteur enregistrées."
	msgAllUsersRemoved = "Tous les utilisateurs ont été supprimés."

	msgAccelXRequired = "L'accélération en x est requise."
	msgAccelYRequired = "L'accélération en y est requise."
	msgAccelZRequired = "L'accélération en z est requise."
	msgAlphaRequired  = "La rotation alpha est requise."
	msgBetaRequired   = "La rotation beta est requise."
	msgGammaRequired  = "La rotation gamma est requise."
)

// PositionRequest is the POST /position body. Only the pseudo is mandatory;
// coordinates are stored as reported.
type PositionRequest struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Pseudo string  `json:"pseudo" validate:"required"`
}

// AccelerometerRequest is the POST /accelerometer body. Rotation angles
// arrive flattened at the top level; all six numeric fields are pointers so
// a missing field is distinguishable from a legitimate zero reading.
//
// Field declaration order drives validation order: the acceleration group is
// checked first, then the rotation group, then the pseudo, and the first
// missing field decides the error message.
type AccelerometerRequest struct {
	Acceleration struct {
		X *float64 `json:"x" validate:"required"`
		Y *float64 `json:"y" validate:"required"`
		Z *float64 `json:"z" validate:"required"`
	} `json:"acceleration"`
	Alpha  *float64 `json:"alpha" validate:"required"`
	Beta   *float64 `json:"beta" validate:"required"`
	Gamma  *float64 `json:"gamma" validate:"required"`
	Pseudo string   `json:"pseudo" validate:"required"`
}

// accelerometerFieldMessages maps a failed field to its client-facing message.
var accelerometerFieldMessages = map[string]string{
	"Acceleration.X": msgAccelXRequired,
	"Acceleration.Y": msgAccelYRequired,
	"Acceleration.Z": msgAccelZRequired,
	"Alpha":          msgAlphaRequired,
	"Beta":           msgBetaRequired,
	"Gamma":          msgGammaRequired,
	"Pseudo":         msgPseudoRequired,
}

// validateAccelerometerRequest returns the message for the first missing
// field, or empty string when the request is complete.
func validateAccelerometerRequest(req *AccelerometerRequest) string {
	fieldErrs := validation.ValidateStruct(req)
	if len(fieldErrs) == 0 {
		return ""
	}
	if msg, ok := accelerometerFieldMessages[fieldErrs[0].Field]; ok {
		return msg
	}
	return msgInvalidBody
}
