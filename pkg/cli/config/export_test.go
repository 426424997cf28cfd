package config

// NewWebhookForTest creates a Webhook config for testing purposes
func NewWebhookForTest(datasetEndpoint, createEndpoint, placeholder string, placeholderSet bool) *Webhook {
	return &Webhook{
		datasetEndpoint: datasetEndpoint,
		createEndpoint:  createEndpoint,
		placeholder:     placeholder,
		placeholderSet:  placeholderSet,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, postgresDSN string) *Repository {
	return &Repository{
		backend:     backend,
		projectID:   projectID,
		postgresDSN: postgresDSN,
	}
}

// NewFirestoreRepositoryForTest creates a Firestore Repository config for testing purposes
func NewFirestoreRepositoryForTest(projectID, prefix string) *Repository {
	return &Repository{
		backend:   BackendFirestore,
		projectID: projectID,
		prefix:    prefix,
	}
}

// FirestoreOptionCount exposes how many options are passed to the firestore backend
func (r *Repository) FirestoreOptionCount() int { return len(r.firestoreOptions()) }

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format string) *Logger {
	return &Logger{level: level, format: format, output: "-"}
}

// NewDownloadForTest creates a Download config for testing purposes
func NewDownloadForTest(fileName string) *Download {
	return &Download{fileName: fileName}
}

// Placeholder exposes the resolved empty image placeholder
func (w *Webhook) Placeholder() string { return w.placeholder }

// Endpoints exposes the resolved endpoints
func (w *Webhook) Endpoints() (string, string) { return w.datasetEndpoint, w.createEndpoint }
