package notify

import (
	"math"

	"github.com/MrEthical07/campusride/locale"
)

// Rendered is the localized subject and plain-text body of a message.
type Rendered struct {
	Subject string
	Body    string
}

// Render localizes msg using the catalog in package locale. Unsupported
// languages fall back to English.
func Render(msg Message) (Rendered, error) {
	var subjectKey, bodyKey string
	switch msg.Kind {
	case KindRegister:
		subjectKey, bodyKey = locale.KeyRegisterSubject, locale.KeyRegisterBody
	case KindReset:
		subjectKey, bodyKey = locale.KeyResetSubject, locale.KeyResetBody
	case KindDelete:
		subjectKey, bodyKey = locale.KeyDeleteSubject, locale.KeyDeleteBody
	default:
		return Rendered{}, ErrUnknownKind
	}

	lang := msg.Language
	if !lang.Valid() {
		lang = locale.Default
	}
	p := locale.Printer(lang)

	return Rendered{
		Subject: p.Sprintf(subjectKey),
		Body:    p.Sprintf(bodyKey, msg.Code, ttlMinutes(msg)),
	}, nil
}

func ttlMinutes(msg Message) int {
	return int(math.Ceil(msg.TTL.Minutes()))
}
