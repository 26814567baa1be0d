package domain

// PendingFileDeletion is an object storage key whose deletion failed and is retried by the cleanup job
type PendingFileDeletion struct {
	BaseModel
	FileKey   string `gorm:"type:text;not null;uniqueIndex:uq_pending_file_deletions_key" json:"file_key"`
	Reason    string `gorm:"type:varchar(100)" json:"reason"`
	Attempts  int    `gorm:"not null;default:0" json:"attempts"`
	LastError string `gorm:"type:text" json:"last_error"`
}

// TableName specifies the table name for PendingFileDeletion
func (PendingFileDeletion) TableName() string {
	return "pending_file_deletions"
}
