package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Zulu

	// Verification emails
	message.SetString(lang, KeyRegisterSubject, "Ikhodi yakho yokuqinisekisa ye-Campus Ride")
	message.SetString(lang, KeyRegisterBody, "Siyakwamukela ku-Campus Ride!\n\nIkhodi yakho yokuqinisekisa ithi %s. Iphelelwa yisikhathi emizuzwini engu-%d.\n\nUma ungazange uyicele le khodi ungayinaki le imeyili.")
	message.SetString(lang, KeyResetSubject, "Setha kabusha iphasiwedi yakho ye-Campus Ride")
	message.SetString(lang, KeyResetBody, "Sithole isicelo sokusetha kabusha iphasiwedi yakho.\n\nIkhodi yakho ithi %s. Iphelelwa yisikhathi emizuzwini engu-%d.\n\nUma ungazange ucele lokhu iphasiwedi yakho ayishintshiwe.")
	message.SetString(lang, KeyDeleteSubject, "Qinisekisa ukususwa kwe-akhawunti yakho ye-Campus Ride")
	message.SetString(lang, KeyDeleteBody, "Ucele ukususa i-akhawunti yakho ye-Campus Ride.\n\nIkhodi yakho yokuqinisekisa ithi %s. Iphelelwa yisikhathi emizuzwini engu-%d.\n\nUkususwa kwe-akhawunti akukwazi ukuhlehliswa.")

	// Directions
	message.SetString(lang, KeyDirectionsWalk, "Hamba usuka e-%s uye endaweni yokugibela i-%s")
	message.SetString(lang, KeyDirectionsBoard, "Gibela i-%s (%s)")
	message.SetString(lang, KeyDirectionsRide, "Gibela ubheke e-%s cishe imizuzu engu-%d")
	message.SetString(lang, KeyDirectionsFare, "Khokha imali yokugibela engu-R%d")
	message.SetString(lang, KeyDirectionsArrive, "Yehla e-%s")
	message.SetString(lang, KeyDirectionsSafety, "Iseluleko sokuphepha: %s")
	message.SetString(lang, KeyDirectionsMinutes, "imizuzu engu-%d")
}
