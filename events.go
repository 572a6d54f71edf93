package octstruct

import "github.com/Davipb/BinarySerializer/internal/valuegraph"

// Events mirrors internal/valuegraph.Events at the public surface, letting a
// caller observe member boundaries as Serialize/Deserialize walks a struct
// (member_serializing / member_serialized in §6.4's terms).
type Events = valuegraph.Events
