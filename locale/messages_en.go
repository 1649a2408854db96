package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	// Verification emails
	message.SetString(lang, KeyRegisterSubject, "Your Campus Ride verification code")
	message.SetString(lang, KeyRegisterBody, "Welcome to Campus Ride!\n\nYour verification code is %s. It expires in %d minutes.\n\nIf you did not request this code you can ignore this email.")
	message.SetString(lang, KeyResetSubject, "Reset your Campus Ride password")
	message.SetString(lang, KeyResetBody, "We received a request to reset your password.\n\nYour reset code is %s. It expires in %d minutes.\n\nIf you did not ask for a reset your password has not been changed.")
	message.SetString(lang, KeyDeleteSubject, "Confirm your Campus Ride account deletion")
	message.SetString(lang, KeyDeleteBody, "You asked to delete your Campus Ride account.\n\nYour confirmation code is %s. It expires in %d minutes.\n\nDeleting your account cannot be undone.")

	// Directions
	message.SetString(lang, KeyDirectionsWalk, "Walk from %s to the %s pick-up point")
	message.SetString(lang, KeyDirectionsBoard, "Board the %s (%s)")
	message.SetString(lang, KeyDirectionsRide, "Ride towards %s for about %d minutes")
	message.SetString(lang, KeyDirectionsFare, "Pay the fare of R%d")
	message.SetString(lang, KeyDirectionsArrive, "Get off at %s")
	message.SetString(lang, KeyDirectionsSafety, "Safety tip: %s")
	message.SetString(lang, KeyDirectionsMinutes, "%d min")
}
