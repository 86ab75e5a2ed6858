package chat

import "errors"

// ErrInvalidSQL reports that the model output could not be cleaned into an
// executable SQL statement. It is a generation-quality failure, distinct
// from a database rejection (store.SQLError), and is not retried.
var ErrInvalidSQL = errors.New("invalid sql generated")
