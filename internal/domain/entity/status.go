package entity

// StatusFields lists where stored records keep their status, in lookup order.
// Records imported from older tools use state, stage or enquiryStatus.
var StatusFields = []string{"status", "state", "stage", "enquiryStatus"}
