package tools

// Annotation hints reported in tools/list. Nothing forge runs reaches the
// network, so openWorldHint is always false.
func hints(readOnly, destructive, idempotent bool) map[string]bool {
	return map[string]bool{
		"readOnlyHint":    readOnly,
		"destructiveHint": destructive,
		"idempotentHint":  idempotent,
		"openWorldHint":   false,
	}
}

func ReadOnlyAnnotations() map[string]bool { return hints(true, false, true) }

// DestructiveAnnotations is for commands that overwrite or remove user data.
func DestructiveAnnotations() map[string]bool { return hints(false, true, false) }

func SafeWriteAnnotations() map[string]bool { return hints(false, false, true) }

func NonIdempotentWriteAnnotations() map[string]bool { return hints(false, false, false) }
