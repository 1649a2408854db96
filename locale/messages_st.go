package locale

import "golang.org/x/text/message"

func init() {
	lang := sesothoTag

	// Verification emails
	message.SetString(lang, KeyRegisterSubject, "Khoutu ya hao ya netefatso ya Campus Ride")
	message.SetString(lang, KeyRegisterBody, "Rea o amohela ho Campus Ride!\n\nKhoutu ya hao ya netefatso ke %s. E tla fela nakong ya metsotso e %d.\n\nHaeba o sa kopa khoutu ena, o ka hlokomoloha lengolo lena.")
	message.SetString(lang, KeyResetSubject, "Seta phasewete ya hao ya Campus Ride botjha")
	message.SetString(lang, KeyResetBody, "Re fumane kopo ya ho seta phasewete ya hao botjha.\n\nKhoutu ya hao ke %s. E tla fela nakong ya metsotso e %d.\n\nHaeba ha o a kopa sena, phasewete ya hao ha e a fetolwa.")
	message.SetString(lang, KeyDeleteSubject, "Netefatsa ho hlakolwa ha akhaonto ya hao ya Campus Ride")
	message.SetString(lang, KeyDeleteBody, "O kopile ho hlakola akhaonto ya hao ya Campus Ride.\n\nKhoutu ya hao ya netefatso ke %s. E tla fela nakong ya metsotso e %d.\n\nHo hlakolwa ha akhaonto ho ke ke ha kgutliswa.")

	// Directions
	message.SetString(lang, KeyDirectionsWalk, "Tsamaya ho tloha %s ho ya sebakeng sa ho palama %s")
	message.SetString(lang, KeyDirectionsBoard, "Palama %s (%s)")
	message.SetString(lang, KeyDirectionsRide, "Tsamaya o lebile %s ka metsotso e ka bang %d")
	message.SetString(lang, KeyDirectionsFare, "Lefa tefello ya R%d")
	message.SetString(lang, KeyDirectionsArrive, "Theoha %s")
	message.SetString(lang, KeyDirectionsSafety, "Keletso ya polokeho: %s")
	message.SetString(lang, KeyDirectionsMinutes, "metsotso e %d")
}
