package policy

// Ownable is implemented by models that belong to a single user. It enables
// generic ownership checks for tenant isolation.
type Ownable interface {
	GetUserID() uint
}

// Owns reports whether userID owns the resource. A nil resource is denied:
// callers must load the record before checking.
func Owns(userID uint, resource Ownable) bool {
	if resource == nil {
		return false
	}
	return resource.GetUserID() == userID
}
