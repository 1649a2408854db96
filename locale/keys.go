package locale

// Catalog keys. Every key is registered for all supported languages.
const (
	KeyRegisterSubject = "email.register.subject"
	KeyRegisterBody    = "email.register.body"
	KeyResetSubject    = "email.reset.subject"
	KeyResetBody       = "email.reset.body"
	KeyDeleteSubject   = "email.delete.subject"
	KeyDeleteBody      = "email.delete.body"

	KeyDirectionsWalk    = "directions.walk"
	KeyDirectionsBoard   = "directions.board"
	KeyDirectionsRide    = "directions.ride"
	KeyDirectionsFare    = "directions.fare"
	KeyDirectionsArrive  = "directions.arrive"
	KeyDirectionsSafety  = "directions.safety"
	KeyDirectionsMinutes = "directions.minutes"
)
