package pkg

import "blueprint"

// AssertNoError aborts startup on errors that leave the process unusable.
func AssertNoError(err error, msg string) {
	if err != nil {
		blueprint.Logger.Error().Err(err).Msg(msg)
		panic(err)
	}
}
